package roster

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Member entities.
type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	Update(ctx context.Context, member *Member) error // Handles updates to Name, Phone, SecondaryPhone, IsActive
	ListActive(ctx context.Context) ([]Member, error)
	ListAll(ctx context.Context) ([]Member, error)
}
