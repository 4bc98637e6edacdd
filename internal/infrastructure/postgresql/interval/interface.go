package interval

import (
	"context"

	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// IntervalRepository is the repository for fetch intervals.
type IntervalRepository interface {
	Create(ctx context.Context, key ScopeKey, r daterange.Range, status Status) (int64, error)
	GetByID(ctx context.Context, id int64) (*FetchInterval, error)
	GetByRange(ctx context.Context, key ScopeKey, r daterange.Range) (*FetchInterval, error)
	ListOverlapping(ctx context.Context, key ScopeKey, r daterange.Range) ([]*FetchInterval, error)
	ListStatuses(ctx context.Context, ids []int64) (map[int64]Status, error)
	SetComplete(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
