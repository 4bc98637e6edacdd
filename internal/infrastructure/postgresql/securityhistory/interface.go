package securityhistory

import (
	"context"

	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// HistoryRepository is the repository for daily security history rows.
type HistoryRepository interface {
	StoreBatch(ctx context.Context, rows []*Row) error
	ListByWindow(ctx context.Context, secID string, session int16, window daterange.Range) ([]*Row, error)
}
