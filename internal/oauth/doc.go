// Package oauth runs the interactive SSO login of telescope.
//
// A login attempt binds a short-lived HTTP listener on the loopback
// interface, sends the user to the SSO authorize page and waits for the
// provider to redirect the browser back with an authorization code. The
// first well-formed redirect wins; later ones are answered but ignored.
//
// # Components
//
//   - DeliverySlot: single-use hand-off between the HTTP handler and the
//     waiting login goroutine. Each attempt creates its own slot.
//   - CallbackServer: the loopback listener. It answers GET <path> with a
//     static confirmation page, 422 when code or state is missing and 404
//     for everything else. Stop is synchronous and releases the port.
//   - Orchestrator: drives one attempt end to end (authorize URL, listener,
//     state check, code exchange, character lookups, cache write).
//
// # Listener states
//
//	Idle -> Listening -> Delivered | TimedOut -> Stopped
//
// A listener is never restarted; a retry builds a new one.
package oauth
