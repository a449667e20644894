package cmd

import (
	"fmt"
	"strconv"

	"telescope/internal/formatting"

	"github.com/spf13/cobra"
)

func newCharactersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "Manage cached characters",
	}
	cmd.AddCommand(newCharactersListCmd())
	cmd.AddCommand(newCharactersRemoveCmd())
	return cmd
}

func newCharactersListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached characters",
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

			formatter := formatting.New(formatting.Options{Format: format, Out: cmd.OutOrStdout()})
			return formatter.FormatCharacters(application.Characters())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newCharactersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove characters from the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseCharacterIDs(args)
			if err != nil {
				return err
			}

			application, err := openApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			n, err := application.RemoveCharacters(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d character(s)\n", n)
			return nil
		},
	}
}

func parseCharacterIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid character id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
