// Package app provides application bootstrap and lifecycle management for telescope.
//
// NewApplication performs the whole startup sequence:
//
//  1. Configures logging from the command-line flags
//  2. Loads the configuration directory (see internal/config)
//  3. Opens the character cache, creating it with its schema when absent
//  4. Eagerly loads the cached characters and the SSO session into memory
//  5. Builds the SSO and ESI clients and the session manager
//
// The Application then exposes the operations the CLI needs: Login,
// Characters, RemoveCharacters, Logout and Status. Close releases the
// database and logs a metrics summary at debug level.
//
// Missing SSO credentials do not prevent startup; commands that only read
// the cache keep working and Login reports the configuration problem.
package app
