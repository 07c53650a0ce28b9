package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/strelka-bot/strelka-bot/internal/config"
	"github.com/strelka-bot/strelka-bot/internal/service/cardservice"
	"github.com/strelka-bot/strelka-bot/internal/strelka"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=bot.go -destination=bot_mock.go -package=bot

const (
	updateTimeout        = 60
	maxConcurrentUpdates = 16
)

const helpText = "Привет. Я бот для проверки баланса Стрелки.\n\n" +
	"Команды:\n" +
	"/setcard <номер_карты> — сохранить номер карты\n" +
	"/card — показать сохраненный номер\n" +
	"/balance — запросить баланс карты"

const (
	msgSetCardUsage   = "Использование: /setcard <номер_карты>"
	msgDigitsOnly     = "Номер карты должен содержать только цифры."
	msgNoUser         = "Не удалось определить пользователя."
	msgCardNotSet     = "Карта не сохранена. Сначала выполните /setcard <номер_карты>"
	msgStorageFailure = "Хранилище недоступно, попробуйте позже."
	msgQuerying       = "Запрашиваю данные по карте..."
)

type CardService interface {
	SetCard(ctx context.Context, userID int64, cardNumber string) error
	GetCard(ctx context.Context, userID int64) (string, error)
}

type StatusFetcher interface {
	FetchStatus(cardNumber string) (string, error)
}

// Sender is the part of tgbotapi.BotAPI the handlers need.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    *tgbotapi.BotAPI
	sender Sender
	cards  CardService
	status StatusFetcher
}

func New(cfg *config.Config, cards CardService, status StatusFetcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	return &Bot{
		api:    api,
		sender: api,
		cards:  cards,
		status: status,
	}, nil
}

// Run long-polls for updates until the context is canceled. Updates are
// handled concurrently, one goroutine per update: the handlers are stateless
// and the card store upsert is atomic, so no extra coordination is needed.
func (b *Bot) Run(ctx context.Context) error {
	zap.L().Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping bot")
			b.api.StopReceivingUpdates()
			g.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				g.Wait()
				return nil
			}
			g.Go(func() error {
				b.handleUpdate(ctx, update)
				return nil
			})
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	msg := update.Message
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "setcard":
		b.handleSetCard(ctx, msg)
	case "card":
		b.handleShowCard(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, helpText)
}

func (b *Bot) handleSetCard(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(msg.Chat.ID, msgSetCardUsage)
		return
	}
	cardNumber := strings.Join(args, "")

	if msg.From == nil {
		b.reply(msg.Chat.ID, msgNoUser)
		return
	}

	err := b.cards.SetCard(ctx, msg.From.ID, cardNumber)
	switch {
	case errors.Is(err, cardservice.ErrInvalidCardNumber):
		b.reply(msg.Chat.ID, msgDigitsOnly)
	case err != nil:
		b.reply(msg.Chat.ID, msgStorageFailure)
	default:
		b.reply(msg.Chat.ID, "Карта сохранена: "+cardNumber)
	}
}

func (b *Bot) handleShowCard(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		b.reply(msg.Chat.ID, msgNoUser)
		return
	}

	cardNumber, err := b.cards.GetCard(ctx, msg.From.ID)
	if err != nil {
		b.reply(msg.Chat.ID, msgStorageFailure)
		return
	}
	if cardNumber == "" {
		b.reply(msg.Chat.ID, msgCardNotSet)
		return
	}

	b.reply(msg.Chat.ID, "Сохраненная карта: "+cardNumber)
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		b.reply(msg.Chat.ID, msgNoUser)
		return
	}

	cardNumber, err := b.cards.GetCard(ctx, msg.From.ID)
	if err != nil {
		b.reply(msg.Chat.ID, msgStorageFailure)
		return
	}
	if cardNumber == "" {
		b.reply(msg.Chat.ID, msgCardNotSet)
		return
	}

	b.reply(msg.Chat.ID, msgQuerying)

	report, err := b.status.FetchStatus(cardNumber)
	if err != nil {
		b.reply(msg.Chat.ID, fetchErrorMessage(err))
		return
	}

	b.reply(msg.Chat.ID, report)
}

// fetchErrorMessage maps each balance-flow failure category to its own
// user-facing message. Nothing is retried; the user may re-issue /balance.
func fetchErrorMessage(err error) string {
	var httpErr *strelka.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Ошибка HTTP: %v", httpErr)
	case errors.Is(err, strelka.ErrFormat):
		return fmt.Sprintf("Ошибка формата ответа: %v", err)
	default:
		return fmt.Sprintf("Ошибка запроса: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		zap.L().Error("failed to send telegram message", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
