package user

import "context"

// Repository is the persistence surface for member accounts.
type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	UpdateName(ctx context.Context, id int, name string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
