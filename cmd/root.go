package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"telescope/internal/app"
	"telescope/internal/oauth"
	"telescope/internal/session"
	"telescope/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeTimeout indicates the login redirect never arrived. Retrying is safe.
	ExitCodeTimeout = 2
	// ExitCodeAuthFailed indicates the SSO flow or the token refresh failed.
	ExitCodeAuthFailed = 3
)

// Global flags
var (
	configPath string
	logLevel   string
	logJSON    bool
)

// rootCmd represents the base command for the telescope application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "telescope",
	Short: "Log in EVE Online characters and keep a local character cache",
	Long: `telescope logs EVE Online characters in through the EVE SSO and keeps
their public details (corporation, alliance, portrait, location) in a local
SQLite cache, together with the SSO session used for privileged calls.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "telescope version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if errors.Is(err, oauth.ErrTimeout) {
		return ExitCodeTimeout
	}

	var exchangeErr *oauth.ExchangeError
	if errors.As(err, &exchangeErr) {
		return ExitCodeAuthFailed
	}

	var refreshErr *session.RefreshError
	if errors.As(err, &refreshErr) {
		return ExitCodeAuthFailed
	}

	if errors.Is(err, oauth.ErrStateMismatch) || errors.Is(err, session.ErrNoSession) {
		return ExitCodeAuthFailed
	}

	// Default to general error
	return ExitCodeError
}

// openApplication bootstraps the application from the global flags.
func openApplication() (*app.Application, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return app.NewApplication(app.NewConfig(level, logJSON, configPath))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration directory (default is $HOME/.config/telescope)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newCharactersCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
}
