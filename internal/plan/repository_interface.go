package plan

import "context"

type Repository interface {
	Create(ctx context.Context, gymID int, name string, priceCents int64, durationValue int, durationUnit DurationUnit) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	ListByGym(ctx context.Context, gymID int) ([]Plan, error)
	Update(ctx context.Context, id int, priceCents int64, isActive bool) (*Plan, error)
}
