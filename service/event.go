package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"depthbook/domain/book"
)

// Event is the JSON frame deposited in the outbox for every book
// mutation. Consumers dedupe on Seq; the broadcaster may deliver a
// frame more than once after a crash.
type Event struct {
	V       int    `json:"v"`
	Type    string `json:"type"`
	Seq     uint64 `json:"seq"`
	OrderID uint64 `json:"order_id"`
	Side    string `json:"side,omitempty"`
	Price   string `json:"price,omitempty"`
	Qty     string `json:"qty,omitempty"`
	TS      int64  `json:"ts"`
}

func newEvent(typ string, seq, orderID uint64) Event {
	return Event{V: 1, Type: typ, Seq: seq, OrderID: orderID, TS: time.Now().UnixNano()}
}

func (e Event) encode() []byte {
	b, _ := json.Marshal(e)
	return b
}

// WAL payloads are pipe-delimited text. Prices and quantities travel
// as decimal strings so replay reconstructs exact values.

func encodePlace(id uint64, side book.Side, price, qty decimal.Decimal) []byte {
	return []byte(fmt.Sprintf("%d|%d|%s|%s", id, side, price, qty))
}

func decodePlace(data []byte) (id uint64, side book.Side, price, qty decimal.Decimal, err error) {
	parts := strings.Split(string(data), "|")
	if len(parts) != 4 {
		return 0, 0, decimal.Zero, decimal.Zero, fmt.Errorf("malformed place payload %q", data)
	}
	if id, err = strconv.ParseUint(parts[0], 10, 64); err != nil {
		return
	}
	s, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}
	side = book.Side(s)
	if price, err = decimal.NewFromString(parts[2]); err != nil {
		return
	}
	qty, err = decimal.NewFromString(parts[3])
	return
}

func encodeCancel(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 10))
}

func decodeCancel(data []byte) (uint64, error) {
	return strconv.ParseUint(string(data), 10, 64)
}

func encodeAmend(id uint64, price, qty decimal.Decimal) []byte {
	return []byte(fmt.Sprintf("%d|%s|%s", id, price, qty))
}

func decodeAmend(data []byte) (id uint64, price, qty decimal.Decimal, err error) {
	parts := strings.Split(string(data), "|")
	if len(parts) != 3 {
		return 0, decimal.Zero, decimal.Zero, fmt.Errorf("malformed amend payload %q", data)
	}
	if id, err = strconv.ParseUint(parts[0], 10, 64); err != nil {
		return
	}
	if price, err = decimal.NewFromString(parts[1]); err != nil {
		return
	}
	qty, err = decimal.NewFromString(parts[2])
	return
}
