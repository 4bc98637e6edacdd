package moex

import (
	"context"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

//go:generate mockgen -source=interface.go -destination=mock/fetcher_mock.go -package=mock

// HistoryFetcher fetches every daily row of a scope inside a date range,
// following the ISS cursor across pages.
type HistoryFetcher interface {
	FetchRange(ctx context.Context, key interval.ScopeKey, rng daterange.Range) ([]*securityhistory.Row, error)
}
