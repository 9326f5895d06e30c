package notification

import "context"

type Repository interface {
	Create(ctx context.Context, userID int, event, title, body string) (*Notification, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Notification, error)
}
