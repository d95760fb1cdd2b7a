// Package httpapi implements the read-only debug/introspection server named
// in §D of the expanded spec: live account and order-book snapshots for
// operator debugging. It is never a control surface — no endpoint mutates
// state, that is cmd/tradectl's job alone.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/position"
	"github.com/lumenfx/tradecore/internal/log"
)

// AccountSource is the read-only slice of *account.Account the server
// needs, kept as an interface so this package never imports exchanges/account
// directly and stays a pure presentation layer.
type AccountSource interface {
	Balances() map[currency.Code]decimal.Decimal
	OpenOrders() []*order.Detail
	Positions() []*position.Position
}

// BookSource resolves a tracked order book by pair string (e.g. "BTC-USDT").
type BookSource func(pairSymbol string) (*orderbook.Book, bool)

// Server is a gorilla/mux-routed HTTP server exposing Account and Book
// snapshots for operator debugging.
type Server struct {
	router  *mux.Router
	http    *http.Server
	account AccountSource
	books   BookSource
	log     log.Logger
}

// New builds a Server bound to account and books; ListenAndServe is not
// called until Start.
func New(addr string, account AccountSource, books BookSource) *Server {
	s := &Server{
		account: account,
		books:   books,
		log:     log.New("httpapi"),
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/account/balances", s.handleBalances).Methods(http.MethodGet)
	s.router.HandleFunc("/account/orders", s.handleOpenOrders).Methods(http.MethodGet)
	s.router.HandleFunc("/account/positions", s.handlePositions).Methods(http.MethodGet)
	s.router.HandleFunc("/books/{pair}", s.handleBook).Methods(http.MethodGet)
	s.http = &http.Server{Addr: addr, Handler: s.router}
	return s
}

// Start begins serving in the background; call Shutdown to stop it.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("http server exited")
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleBalances(w http.ResponseWriter, _ *http.Request) {
	balances := s.account.Balances()
	out := make(map[string]decimal.Decimal, len(balances))
	for code, bal := range balances {
		out[code.String()] = bal
	}
	writeJSON(w, out)
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.account.OpenOrders())
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.account.Positions())
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	pairSymbol := mux.Vars(r)["pair"]
	book, ok := s.books(pairSymbol)
	if !ok {
		http.Error(w, "unknown pair", http.StatusNotFound)
		return
	}
	bids, asks, lastUpdateID := book.Snapshot()
	writeJSON(w, struct {
		Bids         []orderbook.Level `json:"bids"`
		Asks         []orderbook.Level `json:"asks"`
		LastUpdateID int64             `json:"last_update_id"`
	}{Bids: bids, Asks: asks, LastUpdateID: lastUpdateID})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
