package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"depthbook/domain/book"
)

type Writer struct {
	Dir string
}

// Write exports the book and persists it atomically: the snapshot is
// written to a temp file and renamed over the previous one, so a
// crash mid-write leaves the old snapshot intact.
func (w *Writer) Write(seq uint64, b *book.Book) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	orders, lastID, lastArrival := b.Export()

	s := Snapshot{
		Seq:         seq,
		LastID:      lastID,
		LastArrival: lastArrival,
		Created:     time.Now(),
		Orders: lo.Map(orders, func(o book.OrderSnapshot, _ int) OrderEntry {
			return OrderEntry{
				ID:    o.ID,
				Side:  o.Side.String(),
				Price: o.Price.String(),
				Qty:   o.Qty.String(),
				Seq:   o.Seq,
			}
		}),
	}

	tmp := filepath.Join(w.Dir, "snapshot.bin.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, "snapshot.bin"))
}
