package cardrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/strelka-bot/strelka-bot/internal/domain"
	"github.com/strelka-bot/strelka-bot/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Upsert stores the card number for the user, replacing any previous one.
// The ON CONFLICT clause keeps at most one row per user under concurrent callers.
func (repo *Repository) Upsert(ctx context.Context, userID int64, cardNumber string) error {
	query := `
		INSERT INTO user_cards (user_id, card_number)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			card_number = EXCLUDED.card_number,
			updated_at = now()
	`
	_, err := repo.db.Exec(ctx, query, userID, cardNumber)
	if err != nil {
		zap.L().Error("can't save user card", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.UserCard, error) {
	var card domain.UserCard
	err := repo.db.QueryRow(ctx, "SELECT user_id, card_number, created_at, updated_at FROM user_cards WHERE user_id = $1", userID).
		Scan(&card.UserID, &card.CardNumber, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user card", zap.Error(err))
		return nil, err
	}
	return &card, nil
}
