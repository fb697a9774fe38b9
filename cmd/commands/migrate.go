package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dbpkg.Migrate(config.DBSource); err != nil {
				return err
			}

			logger.Info().Msg("database is up to date")

			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		username string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}

			if duration == 0 {
				duration = config.AccessTokenDuration
			}

			maker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
			if err != nil {
				return err
			}

			token, _, err := maker.CreateToken(username, duration)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "token subject")
	cmd.Flags().DurationVar(&duration, "duration", 0, "token lifetime (default ACCESS_TOKEN_DURATION)")

	return cmd
}
