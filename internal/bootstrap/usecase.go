package bootstrap

import (
	historyDomain "github.com/muhammadchandra19/moex-history-service/internal/domain/history"
	historyUc "github.com/muhammadchandra19/moex-history-service/internal/usecase/history"
)

// Usecase holds the service usecases.
type Usecase struct {
	HistoryUsecase historyDomain.Usecase
}

// registerUsecase registers the usecases.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.HistoryUsecase = historyUc.NewUsecase(
		b.Repository.IntervalRepository,
		b.Repository.HistoryRepository,
		b.Repository.HistoryFetcher,
		b.DB,
		b.Logger,
		b.Config.Sync,
	)
}
