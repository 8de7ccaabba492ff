package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"depthbook/domain/book"
	"depthbook/service"
)

func newTestServer(t *testing.T) (*Server, *service.BookService) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(log, book.New(), nil, nil)
	return New(":0", log, svc, nil), svc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func placeOrder(t *testing.T, h http.Handler, side, price, qty string) uint64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/orders", placeRequest{Side: side, Price: price, Qty: qty})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp placeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.OrderID
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.routes(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPlaceOrder(t *testing.T) {
	s, svc := newTestServer(t)
	h := s.routes()

	id := placeOrder(t, h, "bid", "100.5", "10")
	require.NotZero(t, id)

	q := svc.BBO()
	require.NotNil(t, q.Bid)
	require.Equal(t, "100.5", q.Bid.Price.String())
}

func TestPlaceValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.routes()

	cases := []struct {
		name string
		req  placeRequest
	}{
		{"bad side", placeRequest{Side: "sideways", Price: "100", Qty: "1"}},
		{"bad price", placeRequest{Side: "bid", Price: "abc", Qty: "1"}},
		{"bad qty", placeRequest{Side: "bid", Price: "100", Qty: ""}},
		{"zero price", placeRequest{Side: "bid", Price: "0", Qty: "1"}},
		{"negative qty", placeRequest{Side: "ask", Price: "100", Qty: "-1"}},
	}
	for _, tc := range cases {
		rec := doJSON(t, h, http.MethodPost, "/api/orders", tc.req)
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	s, svc := newTestServer(t)
	h := s.routes()

	id := placeOrder(t, h, "ask", "101", "4")

	rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, svc.BBO().Ask)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/orders/notanid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAmendOrder(t *testing.T) {
	s, svc := newTestServer(t)
	h := s.routes()

	id := placeOrder(t, h, "bid", "100", "10")

	rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/orders/%d", id), amendRequest{Price: "100", Qty: "25"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "25", svc.BBO().Bid.Qty.String())

	rec = doJSON(t, h, http.MethodPatch, "/api/orders/999999", amendRequest{Price: "100", Qty: "1"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/orders/%d", id), amendRequest{Price: "-1", Qty: "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepth(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.routes()

	placeOrder(t, h, "bid", "100", "10")
	placeOrder(t, h, "bid", "99", "5")
	placeOrder(t, h, "ask", "101", "4")

	rec := doJSON(t, h, http.MethodGet, "/api/depth?depth=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp depthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bids, 1)
	require.Len(t, resp.Asks, 1)
	require.Equal(t, levelDTO{Price: "100", Qty: "10"}, resp.Bids[0])
	require.Equal(t, levelDTO{Price: "101", Qty: "4"}, resp.Asks[0])

	rec = doJSON(t, h, http.MethodGet, "/api/depth?depth=0", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/depth?depth=x", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBBO(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.routes()

	rec := doJSON(t, h, http.MethodGet, "/api/bbo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty bboResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	require.Nil(t, empty.Bid)
	require.Nil(t, empty.Ask)

	placeOrder(t, h, "bid", "100", "10")
	placeOrder(t, h, "ask", "101", "4")

	rec = doJSON(t, h, http.MethodGet, "/api/bbo", nil)
	var resp bboResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, &levelDTO{Price: "100", Qty: "10"}, resp.Bid)
	require.Equal(t, &levelDTO{Price: "101", Qty: "4"}, resp.Ask)
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.routes()

	rec := doJSON(t, h, http.MethodGet, "/api/health", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}
