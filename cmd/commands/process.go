package commands

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Process every NEW transaction once and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openPersistentStore()
			if err != nil {
				return err
			}
			defer closeStore()

			summary, err := newProcessor(st).ProcessAllNew(cmd.Context())
			if err != nil {
				return err
			}

			return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
		},
	}
}

func processCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single NEW transaction and print its outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return errors.New("--id must be positive")
			}

			st, closeStore, err := openPersistentStore()
			if err != nil {
				return err
			}
			defer closeStore()

			t, processErr := newProcessor(st).ProcessByID(cmd.Context(), id)
			if t.ID != 0 {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(t); err != nil {
					return err
				}
			}

			return processErr
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "transaction id")

	return cmd
}
