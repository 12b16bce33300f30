package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT "userId", name, email, phone, address, password, "createdAt"
		FROM users
		WHERE "userId" = $1
	`
	getUserByEmailQuery = `
		SELECT "userId", name, email, phone, address, password, "createdAt"
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users ("userId", name, email, phone, address, password, "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1,
			email = $2,
			phone = $3,
			address = $4,
			password = $5
		WHERE "userId" = $6
	`
)

const uniqueViolation = "23505"

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, getUserByIDQuery, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, getUserByEmailQuery, NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertUserQuery,
		u.ID,
		u.Name,
		u.Email,
		u.Phone,
		u.Address,
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	u.Email = NormalizeEmail(u.Email)
	result, err := r.db.ExecContext(ctx, updateUserQuery,
		u.Name,
		u.Email,
		u.Phone,
		u.Address,
		u.PasswordHash,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(ctx, u.ID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanUser(scanner rowScanner) (User, error) {
	u := User{}
	if err := scanner.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.Address,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return User{}, err
	}
	return u, nil
}
