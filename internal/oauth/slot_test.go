package oauth

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizationResult_Valid(t *testing.T) {
	assert.True(t, AuthorizationResult{Code: "c", State: "s"}.Valid())
	assert.False(t, AuthorizationResult{Code: "c"}.Valid())
	assert.False(t, AuthorizationResult{State: "s"}.Valid())
}

func TestDeliverySlot_FirstOfferWins(t *testing.T) {
	slot := NewDeliverySlot()

	assert.True(t, slot.Offer(AuthorizationResult{Code: "first", State: "s"}))
	assert.False(t, slot.Offer(AuthorizationResult{Code: "second", State: "s"}))

	got := <-slot.C()
	assert.Equal(t, "first", got.Code)

	select {
	case r := <-slot.C():
		t.Fatalf("slot delivered a second result: %+v", r)
	default:
	}
}

func TestDeliverySlot_ConcurrentOffers(t *testing.T) {
	slot := NewDeliverySlot()

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if slot.Offer(AuthorizationResult{Code: "c", State: "s"}) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Len(t, slot.C(), 1)
}
