package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func incDelta(t *testing.T, update bson.M, field string) float64 {
	t.Helper()
	inc, ok := update["$inc"].(bson.M)
	if !ok {
		t.Fatalf("update has no $inc document: %v", update)
	}
	delta, ok := inc[field].(float64)
	if !ok {
		t.Fatalf("$inc does not touch %s: %v", field, inc)
	}
	return delta
}

func TestEarningBalanceUpdateDeltas(t *testing.T) {
	update := earningBalanceUpdate(150.25, time.Now())

	if got := incDelta(t, update, "balance.pendingEarnings"); got != 150.25 {
		t.Errorf("pendingEarnings delta = %v, want 150.25", got)
	}
	if got := incDelta(t, update, "balance.totalEarnings"); got != 150.25 {
		t.Errorf("totalEarnings delta = %v, want 150.25", got)
	}
	if len(update["$inc"].(bson.M)) != 2 {
		t.Errorf("append must touch exactly pending and total, got %v", update["$inc"])
	}
}

func TestReserveUpdateDeltas(t *testing.T) {
	update := reserveUpdate(200, time.Now())

	if got := incDelta(t, update, "balance.pendingEarnings"); got != -200 {
		t.Errorf("pendingEarnings delta = %v, want -200", got)
	}
	if got := incDelta(t, update, "balance.processingEarnings"); got != 200 {
		t.Errorf("processingEarnings delta = %v, want 200", got)
	}
}

// Cancelling a payout must hand the full reserved amount back: the reversal
// is the exact inverse of the reservation on every counter it touches.
func TestReversalRestoresReservation(t *testing.T) {
	const amount = 340.50
	now := time.Now()

	reserve := reserveUpdate(amount, now)["$inc"].(bson.M)
	reversal := reversalUpdate(amount, now)["$inc"].(bson.M)

	if len(reserve) != len(reversal) {
		t.Fatalf("reserve touches %d counters, reversal %d", len(reserve), len(reversal))
	}
	for field, delta := range reserve {
		back, ok := reversal[field].(float64)
		if !ok {
			t.Fatalf("reversal does not touch %s", field)
		}
		if delta.(float64)+back != 0 {
			t.Errorf("%s: reserve %v + reversal %v != 0", field, delta, back)
		}
	}

	if got := incDelta(t, reversalUpdate(amount, now), "balance.pendingEarnings"); got != amount {
		t.Errorf("cancellation returns %v to pendingEarnings, want %v", got, amount)
	}
}

func TestSettlementUpdateDeltas(t *testing.T) {
	now := time.Now()
	update := settlementUpdate(75, now)

	if got := incDelta(t, update, "balance.processingEarnings"); got != -75 {
		t.Errorf("processingEarnings delta = %v, want -75", got)
	}
	if got := incDelta(t, update, "balance.paidEarnings"); got != 75 {
		t.Errorf("paidEarnings delta = %v, want 75", got)
	}
	set, ok := update["$set"].(bson.M)
	if !ok || set["lastPayoutDate"] != now {
		t.Errorf("settlement must stamp lastPayoutDate, got %v", update["$set"])
	}
}
