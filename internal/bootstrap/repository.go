package bootstrap

import (
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/moex"
	intervalInfra "github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	historyInfra "github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
)

// Repository holds the storage and upstream adapters.
type Repository struct {
	IntervalRepository intervalInfra.IntervalRepository
	HistoryRepository  historyInfra.HistoryRepository
	HistoryFetcher     moex.HistoryFetcher
}

// registerRepository registers the repositories.
func (b *Bootstrap) registerRepository() {
	b.Repository.IntervalRepository = intervalInfra.NewRepository(b.DB, b.Logger)
	b.Repository.HistoryRepository = historyInfra.NewRepository(b.DB, b.Logger)
	b.Repository.HistoryFetcher = moex.NewClient(b.Config.Moex, b.Logger)
}
