package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mkowalczyk/divvy/internal/auth"
	"github.com/mkowalczyk/divvy/internal/config"
	"github.com/mkowalczyk/divvy/internal/expense"
	"github.com/mkowalczyk/divvy/internal/middleware"
	"github.com/mkowalczyk/divvy/internal/service"
	"github.com/mkowalczyk/divvy/internal/storage/sqlite"
	"github.com/mkowalczyk/divvy/pkg/logging"
)

// skipAuth lists route prefixes reachable without a token.
var skipAuth = []string{
	"/api/v1/auth/",
	"/healthz",
	"/metrics",
}

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewAuthenticator(store)

	// A single allocator keeps payer entry ids unique across all drafts.
	alloc := &expense.IDAllocator{}
	limits := expense.Limits{TitleLen: cfg.TitleLimit, NoteLen: cfg.NoteLimit}

	mux := http.NewServeMux()
	service.NewAuthService(authenticator, tokens).Register(mux)
	service.NewGroupService(store).Register(mux)
	service.NewExpenseService(store, alloc, limits, expense.Amount(cfg.MinAmount)).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	handler := middleware.Metrics(mux,
		middleware.CORS(
			middleware.Auth(tokens, skipAuth,
				middleware.Logging(mux))))

	// h2c allows HTTP/2 without TLS for clients that want it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
