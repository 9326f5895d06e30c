package jobs

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitpass/internal/logger"
	"fitpass/internal/notification"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestQueue_Enqueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(QueueNotification, `.*`).SetVal(1)

	q := NewQueue(db)
	err := q.Enqueue(ctx, QueueNotification, NotificationJob{
		Event:  notification.EventPaymentCompleted,
		UserID: 1,
		Data:   map[string]string{"gym": "Iron Temple"},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueue_EnqueueRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(QueueAudit, `.*`).SetErr(assert.AnError)

	q := NewQueue(db)
	err := q.Enqueue(ctx, QueueAudit, AuditJob{Action: "CREATE_SETTLEMENT"})
	assert.Error(t, err)
}

func TestQueue_Length(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(QueueInvoice).SetVal(7)

	q := NewQueue(db)
	require.Equal(t, int64(7), q.Length(ctx, QueueInvoice))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, "1s", backoff(1).String())
	assert.Equal(t, "2s", backoff(2).String())
	assert.Equal(t, "4s", backoff(3).String())
	assert.Equal(t, "30s", backoff(10).String())
}
