// Package httpapi exposes the book over a small JSON API. It parses
// and validates the wire shapes, maps domain errors to status codes,
// and delegates everything else to the service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"depthbook/domain/book"
	"depthbook/service"
)

const defaultDepth = 20

type Server struct {
	addr   string
	log    *slog.Logger
	svc    *service.BookService
	feed   http.Handler
	server *http.Server
}

// New builds the server. feed, when non-nil, is mounted at /ws/depth.
func New(addr string, log *slog.Logger, svc *service.BookService, feed http.Handler) *Server {
	return &Server{addr: addr, log: log, svc: svc, feed: feed}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/orders", s.handlePlace)
	mux.HandleFunc("DELETE /api/orders/{id}", s.handleCancel)
	mux.HandleFunc("PATCH /api/orders/{id}", s.handleAmend)
	mux.HandleFunc("GET /api/depth", s.handleDepth)
	mux.HandleFunc("GET /api/bbo", s.handleBBO)

	if s.feed != nil {
		mux.Handle("GET /ws/depth", s.feed)
	}

	return s.withRequestID(mux)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("http server listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	side, ok := book.ParseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be bid or ask")
		return
	}
	price, qty, ok := parsePriceQty(w, req.Price, req.Qty)
	if !ok {
		return
	}

	id, err := s.svc.Place(side, price, qty)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeResponse{OrderID: id})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Cancel(id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAmend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	var req amendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	price, qty, ok := parsePriceQty(w, req.Price, req.Qty)
	if !ok {
		return
	}

	if err := s.svc.Amend(id, price, qty); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	depth := defaultDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "depth must be a positive integer")
			return
		}
		depth = n
	}
	writeJSON(w, http.StatusOK, toDepthResponse(s.svc.Depth(depth)))
}

func (s *Server) handleBBO(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toBBOResponse(s.svc.BBO()))
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, book.ErrInvalidPrice), errors.Is(err, book.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		s.log.Debug("request", "id", reqID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parsePriceQty(w http.ResponseWriter, priceStr, qtyStr string) (price, qty decimal.Decimal, ok bool) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be a decimal number")
		return price, qty, false
	}
	qty, err = decimal.NewFromString(qtyStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "qty must be a decimal number")
		return price, qty, false
	}
	return price, qty, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
