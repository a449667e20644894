package oauth

import "sync"

// AuthorizationResult is what the SSO redirect carries back.
type AuthorizationResult struct {
	Code  string
	State string
}

// Valid reports whether both the code and the state are present.
func (r AuthorizationResult) Valid() bool {
	return r.Code != "" && r.State != ""
}

// DeliverySlot hands at most one AuthorizationResult from the HTTP handler
// to the login goroutine.
type DeliverySlot struct {
	ch   chan AuthorizationResult
	once sync.Once
}

// NewDeliverySlot returns an empty slot.
func NewDeliverySlot() *DeliverySlot {
	return &DeliverySlot{ch: make(chan AuthorizationResult, 1)}
}

// Offer places r in the slot. Only the first offer is accepted; it reports
// whether this call was that one. Offer never blocks.
func (s *DeliverySlot) Offer(r AuthorizationResult) bool {
	accepted := false
	s.once.Do(func() {
		s.ch <- r
		accepted = true
	})
	return accepted
}

// C yields the delivered result, at most once.
func (s *DeliverySlot) C() <-chan AuthorizationResult {
	return s.ch
}
