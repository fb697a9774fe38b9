// Package commands holds the command line interface of the ledger.
package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/alerting"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

var (
	configPath string
	config     configpkg.Config
	logger     zerolog.Logger
)

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Send()
		return err
	}

	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Transaction processing and balance keeping service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			config, err = configpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}

			logger = middleware.CreateLogger(config)
			cmd.SetContext(logger.WithContext(cmd.Context()))

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "./configs", "directory holding app.env")

	root.AddCommand(serveCmd(), sweepCmd(), processCmd(), migrateCmd(), tokenCmd())

	return root
}

// openStore returns the configured storage and a function releasing it.
func openStore() (store.Store, func(), error) {
	switch config.Storage {
	case configpkg.StorageMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on exit")
		return memstore.New(), func() {}, nil
	case configpkg.StoragePostgres:
	default:
		return nil, nil, fmt.Errorf("unsupported storage %q", config.Storage)
	}

	if config.MigrateOnStart {
		if err := dbpkg.Migrate(config.DBSource); err != nil {
			return nil, nil, err
		}
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	closeDB := func(db *sql.DB) func() {
		return func() {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("cannot close database")
			}
		}
	}

	return store.NewSQLStore(db), closeDB(db), nil
}

// ErrEphemeralStorage is returned by commands that need data kept by another process.
var ErrEphemeralStorage = errors.New("in-memory storage holds no transactions outside the serve command, use STORAGE=postgres")

// openPersistentStore opens the configured store and refuses the in-memory one,
// which always starts empty.
func openPersistentStore() (store.Store, func(), error) {
	if config.Storage == configpkg.StorageMemory {
		return nil, nil, ErrEphemeralStorage
	}

	return openStore()
}

// newProcessor builds the transaction service used outside the http server.
func newProcessor(st store.Store) *transactionservice.Service {
	return transactionservice.New(st, accountservice.New(st),
		transactionservice.WithObservers(alerting.NewLogObserver(logger)))
}
