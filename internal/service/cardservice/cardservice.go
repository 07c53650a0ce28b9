package cardservice

import (
	"context"
	"errors"

	"github.com/strelka-bot/strelka-bot/internal/domain"
	"go.uber.org/zap"
)

//go:generate mockgen -source=cardservice.go -destination=cardservice_mock.go -package=cardservice

type Repo interface {
	Upsert(ctx context.Context, userID int64, cardNumber string) error
	GetByUserID(ctx context.Context, userID int64) (*domain.UserCard, error)
}

var ErrInvalidCardNumber = errors.New("card number must contain only digits")

type Service struct {
	cardRepo Repo
}

func New(cardRepo Repo) *Service {
	return &Service{
		cardRepo: cardRepo,
	}
}

// SetCard validates the number and stores it. The same user setting a card
// twice keeps a single record.
func (s *Service) SetCard(ctx context.Context, userID int64, cardNumber string) error {
	if !isDigits(cardNumber) {
		return ErrInvalidCardNumber
	}

	if err := s.cardRepo.Upsert(ctx, userID, cardNumber); err != nil {
		zap.L().Error("failed to save card", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	return nil
}

// GetCard returns the stored card number or "" when the user has none.
func (s *Service) GetCard(ctx context.Context, userID int64) (string, error) {
	card, err := s.cardRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get card", zap.Int64("userID", userID), zap.Error(err))
		return "", err
	}
	if card == nil {
		return "", nil
	}
	return card.CardNumber, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
