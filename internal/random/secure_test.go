package random

import "testing"

func TestTransactionID(t *testing.T) {
	// Generate multiple IDs and check uniqueness
	seen := make(map[uint16]bool)
	const iterations = 10000

	for i := 0; i < iterations; i++ {
		id := TransactionID()

		if seen[id] {
			// Collisions are expected (birthday paradox): 10k draws
			// over 65,536 values give about 9,275 unique IDs on
			// average, so we just check that most values are unique
			continue
		}
		seen[id] = true
	}

	uniqueCount := len(seen)
	if uniqueCount < iterations*9/10 {
		t.Errorf("too many collisions: got %d unique IDs from %d iterations", uniqueCount, iterations)
	}
}

func TestTransactionID_NotAlwaysZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		if TransactionID() != 0 {
			return
		}
	}
	t.Error("TransactionID returned zero 100 times in a row")
}

func BenchmarkTransactionID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TransactionID()
	}
}
