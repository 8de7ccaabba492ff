package wal

import "time"

// RecordType tags which book operation a record carries. The WAL logs
// exactly the three mutating calls; replaying them in order rebuilds
// the book byte-for-byte, including the id assignment sequence.
type RecordType uint8

const (
	RecordPlace RecordType = iota
	RecordCancel
	RecordAmend
)

type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
