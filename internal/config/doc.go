// Package config provides configuration management for telescope.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/telescope; commands accept --config to point elsewhere.
//
// # Configuration File
//
// The directory may contain config.yaml:
//
//	userAgent: telescope/v0 (you@example.com)
//	clientId: 0123456789abcdef
//	clientSecret: s3cr3t
//	callbackUrl: http://localhost:56123/login
//	scopes:
//	  - publicData
//	  - esi-location.read_location.v1
//	databasePath: ~/.config/telescope/telescope.db
//	loginTimeout: 5m
//	sso:
//	  authorizeUrl: https://login.eveonline.com/v2/oauth/authorize
//	  tokenUrl: https://login.eveonline.com/v2/oauth/token
//	esi:
//	  baseUrl: https://esi.evetech.net/latest
//	  requestsPerSecond: 10
//
// A missing file is not an error: defaults are used. The callbackUrl must
// match the one registered with the SSO application; the login listener
// binds its port and path.
//
// # Environment
//
// TELESCOPE_CLIENT_ID, TELESCOPE_CLIENT_SECRET and TELESCOPE_DB override the
// corresponding file values, so credentials need not be written to disk.
package config
