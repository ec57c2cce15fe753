package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"solarweather/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ Authorization = (*UserRepository)(nil)

const (
	insertUserSQL           = `INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`
	selectUserByUsernameSQL = `SELECT id, username, password_hash FROM users WHERE username = ?`
)

// Create inserts a new operator and returns its ID.
func (r *UserRepository) Create(username, passwordHash string) (int, error) {
	var id int
	if err := r.db.QueryRowx(r.db.Rebind(insertUserSQL), username, passwordHash).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert user %q: %w", username, err)
	}
	return id, nil
}

// GetByUsername fetches an operator by username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Get(&u, r.db.Rebind(selectUserByUsernameSQL), username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &u, nil
}
