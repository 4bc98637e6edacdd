package history

import (
	"context"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

//go:generate mockgen -source=interface.go -destination=mock/usecase_mock.go -package=mock

// Usecase is the usecase for security history.
type Usecase interface {
	GetDaysHistory(ctx context.Context, key interval.ScopeKey, window daterange.Range) ([]*securityhistory.Row, error)
}
