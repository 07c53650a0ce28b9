package domain

import "time"

type UserCard struct {
	UserID     int64     `db:"user_id"`
	CardNumber string    `db:"card_number"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
