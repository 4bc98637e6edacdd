package history

import (
	"context"
	"time"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/moex"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

// Usecase coalesces history requests: each window is fetched from the ISS
// API at most once, later requests read from storage.
type Usecase struct {
	intervals interval.IntervalRepository
	history   securityhistory.HistoryRepository
	fetcher   moex.HistoryFetcher
	db        postgresql.PostgreSQLClient
	logger    logger.Interface

	waitAttempts int
	waitBackoff  time.Duration
}

// NewUsecase creates a new history usecase.
func NewUsecase(
	intervals interval.IntervalRepository,
	history securityhistory.HistoryRepository,
	fetcher moex.HistoryFetcher,
	db postgresql.PostgreSQLClient,
	log logger.Interface,
	sync config.SyncConfig,
) *Usecase {
	// A request polls foreign intervals at least once.
	waitAttempts := sync.WaitAttempts
	if waitAttempts < 1 {
		waitAttempts = 1
	}

	return &Usecase{
		intervals:    intervals,
		history:      history,
		fetcher:      fetcher,
		db:           db,
		logger:       log,
		waitAttempts: waitAttempts,
		waitBackoff:  sync.WaitBackoff,
	}
}

// GetDaysHistory returns every stored daily row of the scope inside the
// window, fetching whatever part of the window has not been fetched before.
func (u *Usecase) GetDaysHistory(ctx context.Context, key interval.ScopeKey, window daterange.Range) ([]*securityhistory.Row, error) {
	if err := u.sync(ctx, key, window); err != nil {
		return nil, err
	}

	rows, err := u.history.ListByWindow(ctx, key.SecID, key.Session, window)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.TracerWithCode("no history for "+key.SecID+" in "+window.String(), errors.HistoryNotFound)
	}

	return rows, nil
}
