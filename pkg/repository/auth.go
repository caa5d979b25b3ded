package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"crosspay_back/models"
)

type AuthPostgres struct {
	db *sqlx.DB
}

func NewAuthPostgres(db *sqlx.DB) *AuthPostgres {
	return &AuthPostgres{db: db}
}

func (r *AuthPostgres) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	query := `SELECT id, username, first_name, last_name, created_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	return user, classify(err, "user not found")
}

func (r *AuthPostgres) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var out models.User
	query := `
        INSERT INTO users (id, username, first_name, last_name)
        VALUES ($1, $2, $3, $4)
        RETURNING id, username, first_name, last_name, created_at
    `
	err := r.db.GetContext(ctx, &out, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
	)
	return out, classify(err, "user not found")
}
