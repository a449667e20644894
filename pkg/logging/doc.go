// Package logging provides the process-wide structured logger for telescope.
//
// It is a thin layer over log/slog that tags every entry with the subsystem
// that produced it, so CLI output from the callback listener, the store and
// the login flow can be told apart:
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr, false)
//	logging.Info("Store", "Opened database at %s", path)
//	logging.Error("Login", err, "Login attempt %s failed", attemptID)
//
// Components that take a *slog.Logger use For(subsystem) to obtain one that
// carries the same subsystem attribute.
package logging
