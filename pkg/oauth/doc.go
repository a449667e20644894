// Package oauth implements the identity-provider side of the telescope login:
// authorization URL construction, authorization code exchange, token refresh
// and decoding of the character claims carried by the SSO access token.
//
// # Core Components
//
//   - Client: EVE SSO client built on golang.org/x/oauth2
//   - Token: token representation with a provider-reported TTL
//   - Claims: identity claims decoded from the JWT access token
//   - PKCE and state generation (RFC 7636)
//
// # Usage
//
//	client := oauth.NewClient(oauth.Config{
//	    ClientID:     "...",
//	    ClientSecret: "...",
//	    CallbackURL:  "http://localhost:56123/login",
//	    Scopes:       []string{"publicData"},
//	})
//
//	req, err := client.AuthorizeURL()
//	// ... user visits req.URL, the redirect delivers code + state ...
//	claims, token, err := client.Authenticate(ctx, code, req.Verifier)
package oauth
