package payment

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Payment, error)
	ResolveForConfirmation(ctx context.Context, orderID, paymentID string, subscriptionHint int) (*Payment, error)
	MarkFailed(ctx context.Context, id int) error
}
