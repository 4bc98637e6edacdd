package bootstrap

import (
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

// Bootstrap wires the history service dependencies.
type Bootstrap struct {
	Repository Repository
	Usecase    Usecase
	API        API
	Logger     logger.Interface

	Config *config.Config
	DB     postgresql.PostgreSQLClient
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	Config *config.Config
	DB     postgresql.PostgreSQLClient
	Logger logger.Interface
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.Config = config.Config
	b.DB = config.DB
	b.Logger = config.Logger

	b.registerRepository()
	b.registerUsecase()
	b.registerAPI()

	return *b
}
