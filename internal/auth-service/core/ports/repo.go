package ports

import (
	"context"

	"hatbazar/internal/auth-service/core/domain/models"

	"github.com/jackc/pgx/v5"
)

type IDB interface {
	GetConn() *pgx.Conn
	IsAlive() error
	Close() error
}

type IAuthRepo interface {
	// Create returns the new user_id.
	Create(ctx context.Context, user models.User) (string, error)

	// CreateVendor inserts the user row and the vendor profile in one
	// transaction; vendor_id equals the returned user_id.
	CreateVendor(ctx context.Context, user models.User, profile models.VendorProfile) (string, error)

	GetByEmail(ctx context.Context, email string) (models.User, error)

	// IsVendorActive reports whether the vendor profile is active.
	IsVendorActive(ctx context.Context, vendorId string) (bool, error)
}
