package repo

import (
	"github.com/strelka-bot/strelka-bot/internal/pg"
	cardrepo "github.com/strelka-bot/strelka-bot/internal/repo/card-repo"
	"github.com/strelka-bot/strelka-bot/internal/service/cardservice"
)

type Repositories struct {
	CardRepo cardservice.Repo
}

func New(conn pg.Database) *Repositories {
	cardRepo := cardrepo.New(conn)

	return &Repositories{
		CardRepo: cardRepo,
	}
}
