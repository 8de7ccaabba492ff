package wal

import (
	"encoding/binary"
	"io"
	"os"
)

// maxSeqInSegment scans a segment and returns the highest sequence in
// it. Used only to decide which segments a snapshot has made dead.
func maxSeqInSegment(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var max uint64

	for {
		// Header: [type:1][seq:8][time:8][len:4]
		header := make([]byte, 21)
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return max, nil
			}
			return max, err
		}

		seq := binary.BigEndian.Uint64(header[1:9])
		if seq > max {
			max = seq
		}

		payloadLen := binary.BigEndian.Uint32(header[17:21])

		// Skip payload + CRC
		if _, err := f.Seek(int64(payloadLen+4), io.SeekCurrent); err != nil {
			return max, err
		}
	}
}

// tailOffset returns the byte offset just past the last complete,
// valid record in a segment. Anything beyond it is a torn tail from a
// crash mid-append.
func tailOffset(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := st.Size()

	var good int64
	for {
		header := make([]byte, 21)
		if _, err := io.ReadFull(f, header); err != nil {
			return good, nil
		}
		payloadLen := int64(binary.BigEndian.Uint32(header[17:21]))
		if good+21+payloadLen+4 > size {
			return good, nil
		}

		rest := make([]byte, payloadLen+4)
		if _, err := io.ReadFull(f, rest); err != nil {
			return good, nil
		}
		crc := binary.BigEndian.Uint32(rest[payloadLen:])
		if !CRC32Valid(append(header, rest[:payloadLen]...), crc) {
			return good, nil
		}
		good += 21 + payloadLen + 4
	}
}
