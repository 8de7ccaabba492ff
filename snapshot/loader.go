package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"depthbook/domain/book"
)

// Load restores a snapshot into an empty book and returns the WAL
// sequence it covers. A missing snapshot is not an error; replay
// simply starts from zero.
func Load(dir string, b *book.Book) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, "snapshot.bin"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		side, ok := book.ParseSide(e.Side)
		if !ok {
			return 0, fmt.Errorf("snapshot: order %d has unknown side %q", e.ID, e.Side)
		}
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return 0, fmt.Errorf("snapshot: order %d price: %w", e.ID, err)
		}
		qty, err := decimal.NewFromString(e.Qty)
		if err != nil {
			return 0, fmt.Errorf("snapshot: order %d qty: %w", e.ID, err)
		}
		if err := b.Restore(e.ID, side, price, qty, e.Seq); err != nil {
			return 0, fmt.Errorf("snapshot: restore order %d: %w", e.ID, err)
		}
	}

	b.FastForward(s.LastID, s.LastArrival)
	return s.Seq, nil
}
