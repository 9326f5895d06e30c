package invoice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Uploader is the object-storage boundary. Rendering targets (PDF, QR) and
// real storage backends live behind it.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte) error
}

type Invoice struct {
	SubscriptionID int
	PaymentID      int
	GymName        string
	PlanName       string
	AmountCents    int64
	AccessCode     string
	IssuedAt       time.Time
}

func (i Invoice) Key() string {
	return fmt.Sprintf("invoices/payment-%d.txt", i.PaymentID)
}

// Render produces the plain-text invoice document.
func Render(i Invoice) []byte {
	body := fmt.Sprintf(`FITPASS INVOICE

Invoice for payment #%d
Issued: %s

Gym:    %s
Plan:   %s
Amount: %.2f

Subscription: #%d
Access code:  %s

Thank you for your membership.
`, i.PaymentID, i.IssuedAt.Format("Jan 2, 2006"), i.GymName, i.PlanName,
		float64(i.AmountCents)/100, i.SubscriptionID, i.AccessCode)

	return []byte(body)
}

// DirUploader writes invoices to a local directory. Stand-in for a real
// object store behind the same interface.
type DirUploader struct {
	dir string
}

func NewDirUploader(dir string) *DirUploader {
	return &DirUploader{dir: dir}
}

func (u *DirUploader) Upload(_ context.Context, key string, body []byte) error {
	path := filepath.Join(u.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
