package bootstrap

import (
	"github.com/muhammadchandra19/moex-history-service/internal/api"
)

// API holds the HTTP-facing components.
type API struct {
	Server *api.Server
}

// registerAPI registers the HTTP server.
func (b *Bootstrap) registerAPI() {
	b.API.Server = api.NewServer(b.Config.App, b.Logger, b.Usecase.HistoryUsecase, b.DB)
}
