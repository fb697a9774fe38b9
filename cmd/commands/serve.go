package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/sweeper"
)

func serveCmd() *cobra.Command {
	var noSweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the http API and the background sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if config.Environment != "development" {
				gin.SetMode(gin.ReleaseMode)
			}

			server, err := httpserver.New(st, logger, config)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup

			if !noSweep {
				s, err := sweeper.New(server.Transactions, config.SweepInterval)
				if err != nil {
					return err
				}

				wg.Add(1)
				go func() {
					defer wg.Done()
					s.Run(ctx)
				}()
			}

			srv := &http.Server{
				Addr:    config.ServerAddress,
				Handler: server,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("address", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				stop()
				wg.Wait()

				return err
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()

			err = srv.Shutdown(shutdownCtx)
			wg.Wait()

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "do not run the background sweeper")

	return cmd
}
