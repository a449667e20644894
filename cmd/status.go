package cmd

import (
	"time"

	"telescope/internal/app"
	"telescope/internal/formatting"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		refresh bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the SSO session and cache status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(output)
			if err != nil {
				return err
			}

			application, err := openApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			status, err := application.Status(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			formatter := formatting.New(formatting.Options{Format: format, Out: cmd.OutOrStdout()})
			return formatter.FormatStatus(statusView(status), time.Now())
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh the session first when it is stale")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

// statusView drops the tokens; only their presence is shown.
func statusView(status app.Status) formatting.Status {
	return formatting.Status{
		LoggedIn:      !status.Session.IsZero(),
		Valid:         status.Valid,
		ExpiresAt:     status.Session.ExpiresAt,
		CanRefresh:    status.Session.RefreshToken != "",
		Characters:    status.Characters,
		SchemaVersion: status.SchemaVersion,
		DatabasePath:  status.DatabasePath,
	}
}
