package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/user"
)

const userColumns = `id, phone_number, first_name, last_name, password_hash, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.PhoneNumber, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithInitialAccount inserts the user and their first account in one
// transaction.
func (r *UserRepository) CreateWithInitialAccount(ctx context.Context, params user.CreateParams, initial account.CreateParams) (*user.User, *account.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (phone_number, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(tx.QueryRowContext(ctx, query, params.PhoneNumber, params.FirstName, params.LastName, params.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, user.ErrPhoneTaken
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	initial.UserID = u.ID
	acc, err := insertAccount(ctx, tx, initial)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return u, acc, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
