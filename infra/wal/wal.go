// Package wal is a segmented, CRC-framed append log of book
// mutations. Appends go to the current segment; segments rotate by
// size or age, and snapshots allow whole segments to be truncated
// once their records are covered.
//
// Frame layout: [type:1][seq:8][time:8][len:4][payload][crc:4], all
// integers big-endian. The CRC covers header and payload.
package wal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

type WAL struct {
	dir        string
	segSize    int64
	segAge     time.Duration
	current    *segment
	segIndex   int
	lastRotate time.Time
}

// Open creates the directory if needed and resumes appending after
// the highest existing segment.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	index := 0
	if files, err := filepath.Glob(filepath.Join(cfg.Dir, "segment-*.wal")); err == nil && len(files) > 0 {
		sort.Strings(files)
		var n int
		if _, err := fmt.Sscanf(filepath.Base(files[len(files)-1]), "segment-%06d.wal", &n); err == nil {
			index = n
		}
	}

	// A crash mid-append leaves a torn record at the end of the
	// resumed segment. Cut it off before appending, or the new
	// records land behind bytes no reader can get past.
	path := segmentPath(cfg.Dir, index)
	if st, err := os.Stat(path); err == nil && st.Size() > 0 {
		good, err := tailOffset(path)
		if err != nil {
			return nil, err
		}
		if good < st.Size() {
			if err := os.Truncate(path, good); err != nil {
				return nil, err
			}
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		segAge:     cfg.SegmentDuration,
		current:    seg,
		segIndex:   index,
		lastRotate: time.Now(),
	}, nil
}

// Append frames and writes one record, rotating afterwards if the
// segment crossed its size or age limit.
func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	buf := make([]byte, 1+8+8+4+payloadLen+4)
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Data)

	crc := CRC32(buf[:21+payloadLen])
	binary.BigEndian.PutUint32(buf[21+payloadLen:], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}

	if w.current.offset >= w.segSize || (w.segAge > 0 && time.Since(w.lastRotate) >= w.segAge) {
		return w.rotate()
	}
	return nil
}

// Sync flushes the current segment to disk.
func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	return w.current.close()
}

func (w *WAL) rotate() error {
	_ = w.current.sync()
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore deletes whole segments whose records are all covered
// by a snapshot at seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := filepath.Glob(filepath.Join(w.dir, "segment-*.wal"))
	if err != nil {
		return err
	}

	active := segmentPath(w.dir, w.segIndex)
	for _, path := range files {
		if path == active {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}
