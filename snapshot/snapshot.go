// Package snapshot persists a consistent cut of the resting book so a
// restart loads the snapshot and replays only the WAL tail written
// after it. It is strictly outside the core: it talks to the book
// through Export and Restore only.
package snapshot

import "time"

type Snapshot struct {
	// Seq is the WAL sequence this snapshot covers: every record with
	// a lower or equal seq is reflected in Orders.
	Seq uint64

	// Id and arrival high-water marks, so ids issued before the
	// snapshot are never reissued after a load.
	LastID      uint64
	LastArrival uint64

	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry stores prices and quantities as strings: decimal's text
// form is exact and stable across versions, which gob encoding of the
// internal representation is not guaranteed to be.
type OrderEntry struct {
	ID    uint64
	Side  string
	Price string
	Qty   string
	Seq   uint64
}
