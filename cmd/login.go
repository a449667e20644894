package cmd

import (
	"fmt"
	"time"

	"telescope/internal/app"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var (
		timeout   time.Duration
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log a character in through the EVE SSO",
		Long: `Log a character in through the EVE SSO.

A local listener is started on the configured callback URL and the SSO login
page is opened in the browser. Once the SSO redirects back, the character is
looked up and stored in the local cache.

Examples:
  telescope login                  # Open the browser and wait up to the configured timeout
  telescope login --no-browser     # Print the URL only
  telescope login --timeout 2m     # Give up after two minutes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApplication()
			if err != nil {
				return err
			}
			defer application.Close()

			out := cmd.OutOrStdout()
			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			s.Suffix = " Waiting for the SSO redirect..."

			character, err := application.Login(cmd.Context(), app.LoginOptions{
				Timeout:     timeout,
				OpenBrowser: !noBrowser,
				Notify: func(url string) {
					fmt.Fprintf(out, "Open this URL to log in:\n\n  %s\n\n", url)
					s.Start()
				},
			})
			s.Stop()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), text.FgRed.Sprint("Login failed"))
				return err
			}

			fmt.Fprintf(out, "%s %s (%d)\n", text.FgGreen.Sprint("Logged in as"), character.Name, character.ID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for the SSO redirect (default from config, 5m)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the browser, only print the login URL")
	return cmd
}
