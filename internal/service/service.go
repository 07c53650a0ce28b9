package service

import (
	"github.com/strelka-bot/strelka-bot/internal/bot"
	"github.com/strelka-bot/strelka-bot/internal/repo"
	cardservice "github.com/strelka-bot/strelka-bot/internal/service/cardservice"
)

type Services struct {
	CardService bot.CardService
}

func New(repo *repo.Repositories) *Services {
	cardService := cardservice.New(repo.CardRepo)

	return &Services{
		CardService: cardService,
	}
}
