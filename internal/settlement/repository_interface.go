package settlement

import "context"

type Repository interface {
	UnsettledSummary(ctx context.Context) ([]GymSummary, error)
	CreateForGym(ctx context.Context, gymID int) (*Settlement, error)
	MarkProcessed(ctx context.Context, id int, transactionID, notes string) (*Settlement, error)
	GetByID(ctx context.Context, id int) (*Settlement, error)
	ListAll(ctx context.Context) ([]Settlement, error)
}
