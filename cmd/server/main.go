// Package main runs the quote service daemon: an HTTP API serving
// swap quotes with slippage bounds against live chain reserves, plus
// Prometheus metrics and a status endpoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
	"amm-settlement-lab/internal/observability"
	"amm-settlement-lab/internal/quote"
	"amm-settlement-lab/internal/registry"
	"amm-settlement-lab/internal/reserve"
	"amm-settlement-lab/internal/slippage"
	"amm-settlement-lab/internal/units"
)

// Server holds the wired components of the quote service.
type Server struct {
	store   *registry.Store
	quotes  *quote.Service
	cache   *reserve.Cache
	logger  *log.Logger
	started time.Time

	quotesServed atomic.Int64
}

func main() {
	// .env values fill in missing env vars; never override them.
	godotenv.Load()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("CHAIN_RPC_ENDPOINT"), "Chain JSON-RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("CHAIN_WS_ENDPOINT"), "Chain WebSocket endpoint (optional)")
	registryPath := flag.String("registry", os.Getenv("REGISTRY_PATH"), "Token/pool registry JSON file")
	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	maxSnapshotAge := flag.Duration("max-snapshot-age", reserve.DefaultMaxAge, "Staleness bound for reserve snapshots")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *registryPath == "" {
		logger.Fatal("--registry is required")
	}

	reg, err := registry.LoadFile(*registryPath)
	if err != nil {
		logger.Fatalf("Load registry: %v", err)
	}
	store := registry.NewStore(reg)
	logger.Printf("Registry loaded: %d tokens, %d pools, hub %s",
		len(reg.Tokens()), len(reg.Pools()), reg.Hub().Symbol)

	client := chain.NewHTTPClient(*rpcEndpoint)
	provider := reserve.NewProvider(client, store, reserve.WithMaxAge(*maxSnapshotAge))
	cache := reserve.NewCache(provider)

	server := &Server{
		store:   store,
		quotes:  quote.NewService(cache, store),
		cache:   cache,
		logger:  logger,
		started: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pool-change notifications keep the snapshot cache fresh. The
	// staleness bound covers quoting when the stream is absent or down.
	if *wsEndpoint != "" {
		ws, err := chain.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Connect WebSocket: %v", err)
		}
		defer ws.Close()
		ws.OnReconnect = observability.RecordWSReconnect

		addrs := make([]string, 0, len(reg.Pools()))
		for _, p := range reg.Pools() {
			addrs = append(addrs, p.Address)
		}
		notes, err := ws.SubscribePools(ctx, addrs)
		if err != nil {
			logger.Fatalf("Subscribe pools: %v", err)
		}
		go cache.Watch(ctx, notes, func(poolID string) {
			observability.RecordCacheInvalidation()
			logger.Printf("Snapshot invalidated: %s", poolID)
		})
		logger.Printf("Subscribed to %d pools on %s", len(addrs), *wsEndpoint)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/tokens", server.handleTokens)
	mux.HandleFunc("/quote", server.handleQuote)

	httpServer := &http.Server{Addr: *listenAddr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down", sig)
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Printf("Listening on %s", *listenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server: %v", err)
	}
	logger.Println("Shutdown complete")
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	Hub          string `json:"hub"`
	Tokens       int    `json:"tokens"`
	Pools        int    `json:"pools"`
	QuotesServed int64  `json:"quotes_served"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	reg := s.store.Load()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:       "ok",
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Hub:          reg.Hub().Symbol,
		Tokens:       len(reg.Tokens()),
		Pools:        len(reg.Pools()),
		QuotesServed: s.quotesServed.Load(),
	})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Load().Tokens())
}

// QuoteResponse is the JSON response for the /quote endpoint. Base
// amounts are decimal strings; display amounts carry token decimals.
type QuoteResponse struct {
	Route           string        `json:"route"`
	AssetIn         string        `json:"asset_in"`
	AssetOut        string        `json:"asset_out"`
	InputBase       string        `json:"input_base"`
	InputDisplay    string        `json:"input_display"`
	OutputBase      string        `json:"output_base"`
	OutputDisplay   string        `json:"output_display"`
	FeeBase         string        `json:"fee_base"`
	FeeDisplay      string        `json:"fee_display"`
	PriceImpactPct  string        `json:"price_impact_pct"`
	SlippageBps     uint32        `json:"slippage_bps"`
	MinimumReceived string        `json:"minimum_received,omitempty"`
	MaximumInput    string        `json:"maximum_input,omitempty"`
	Legs            []LegResponse `json:"legs,omitempty"`
}

// LegResponse describes one leg of a hop quote.
type LegResponse struct {
	AssetIn  string `json:"asset_in"`
	AssetOut string `json:"asset_out"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Fee      string `json:"fee"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	assetIn := q.Get("from")
	assetOut := q.Get("to")
	amountStr := q.Get("amount")
	direction := q.Get("direction")
	if direction == "" {
		direction = "input"
	}
	slippageBps := uint32(100)
	if v := q.Get("slippage_bps"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n >= 10000 {
			writeError(w, http.StatusBadRequest, "slippage_bps must be an integer in [0, 10000)")
			return
		}
		slippageBps = uint32(n)
	}

	reg := s.store.Load()
	tokenIn, ok := reg.Token(assetIn)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown token: "+assetIn)
		return
	}
	tokenOut, ok := reg.Token(assetOut)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown token: "+assetOut)
		return
	}

	display, err := units.ParseDisplayAmount(amountStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+amountStr)
		return
	}

	var result *domain.Quote
	switch direction {
	case "input":
		inputBase, err := units.ToBaseUnits(display, tokenIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err = s.quotes.QuoteExactInput(r.Context(), assetIn, assetOut, inputBase)
		if err != nil {
			s.writeQuoteError(w, err)
			return
		}
	case "output":
		outputBase, err := units.ToBaseUnits(display, tokenOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err = s.quotes.QuoteExactOutput(r.Context(), assetIn, assetOut, outputBase)
		if err != nil {
			s.writeQuoteError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "direction must be input or output")
		return
	}

	if result.InsufficientLiquidity {
		observability.RecordQuoteError("insufficient_liquidity")
		writeError(w, http.StatusUnprocessableEntity, "insufficient liquidity for requested amount")
		return
	}

	impact, err := slippage.PriceImpact(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := QuoteResponse{
		Route:          routeKindLabel(result.Route.Kind),
		AssetIn:        assetIn,
		AssetOut:       assetOut,
		InputBase:      units.FormatBaseUnits(result.Input),
		InputDisplay:   units.ToDisplayUnits(result.Input, tokenIn).String(),
		OutputBase:     units.FormatBaseUnits(result.Output),
		OutputDisplay:  units.ToDisplayUnits(result.Output, tokenOut).String(),
		FeeBase:        units.FormatBaseUnits(result.Fee),
		FeeDisplay:     slippage.TradeFeeDisplay(result, tokenIn).String(),
		PriceImpactPct: impact.Round(4).String(),
		SlippageBps:    slippageBps,
	}

	switch direction {
	case "input":
		min, err := slippage.MinimumReceived(result.Output, slippageBps)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.MinimumReceived = units.FormatBaseUnits(min)
	case "output":
		max, err := slippage.MaximumInput(result.Input, slippageBps)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.MaximumInput = units.FormatBaseUnits(max)
	}

	for _, leg := range result.Legs {
		resp.Legs = append(resp.Legs, LegResponse{
			AssetIn:  leg.AssetIn,
			AssetOut: leg.AssetOut,
			Input:    units.FormatBaseUnits(leg.Input),
			Output:   units.FormatBaseUnits(leg.Output),
			Fee:      units.FormatBaseUnits(leg.Fee),
		})
	}

	s.quotesServed.Add(1)
	observability.RecordQuote(direction, resp.Route)
	observability.DefaultMetrics.QuoteDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// writeQuoteError maps quoting failures to HTTP statuses.
func (s *Server) writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRoute):
		observability.RecordQuoteError("invalid_route")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		observability.RecordQuoteError("invalid_amount")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientLiquidity):
		observability.RecordQuoteError("insufficient_liquidity")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrStaleSnapshot):
		observability.RecordQuoteError("stale_snapshot")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrPoolInactive):
		observability.RecordQuoteError("pool_inactive")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		observability.RecordQuoteError("chain_query")
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func routeKindLabel(kind domain.RouteKind) string {
	if kind == domain.RouteHop {
		return "hop"
	}
	return "direct"
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
