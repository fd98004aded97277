package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hatbazar/internal/auth-service/core/domain/models"
	"hatbazar/internal/auth-service/core/ports"
	"hatbazar/internal/auth-service/core/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AuthRepo struct {
	db *DB
}

var _ ports.IAuthRepo = (*AuthRepo)(nil)

func NewAuthRepo(db *DB) *AuthRepo {
	return &AuthRepo{
		db: db,
	}
}

func (ar *AuthRepo) Create(ctx context.Context, user models.User) (string, error) {
	q := `INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING user_id`

	id := ""
	row := ar.db.conn.QueryRow(ctx, q, user.Username, user.Email, user.PasswordHash, user.Role)
	if err := row.Scan(&id); err != nil {
		if dup := duplicateErr(err); dup != nil {
			return "", dup
		}
		return "", fmt.Errorf("failed to insert user: %v", err)
	}

	return id, nil
}

func (ar *AuthRepo) CreateVendor(ctx context.Context, user models.User, profile models.VendorProfile) (string, error) {
	tx, err := ar.db.conn.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	id := ""
	row := tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING user_id`,
		user.Username, user.Email, user.PasswordHash, user.Role,
	)
	if err := row.Scan(&id); err != nil {
		if dup := duplicateErr(err); dup != nil {
			return "", dup
		}
		return "", fmt.Errorf("failed to insert vendor user: %v", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO vendors (vendor_id, name, email, business_name, category, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, profile.Name, profile.Email, profile.BusinessName, profile.Category,
		profile.Latitude, profile.Longitude,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert vendor profile: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %v", err)
	}

	return id, nil
}

func (ar *AuthRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	q := `
		SELECT
			u.user_id,
			u.created_at,
			u.username,
			u.email,
			u.password_hash,
			u.role
		FROM
			users u
		WHERE
			u.email = $1
	`

	var u models.User
	err := ar.db.conn.QueryRow(ctx, q, email).Scan(
		&u.UserId,
		&u.CreatedAt,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, service.ErrUnknownEmail
		}
		return models.User{}, err
	}

	return u, nil
}

func (ar *AuthRepo) IsVendorActive(ctx context.Context, vendorId string) (bool, error) {
	q := `SELECT is_active FROM vendors WHERE vendor_id = $1`

	active := false
	err := ar.db.conn.QueryRow(ctx, q, vendorId).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

// duplicateErr translates a unique violation into the matching domain
// error, nil otherwise.
func duplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return service.ErrEmailRegistered
	}
	return service.ErrUsernameTaken
}
