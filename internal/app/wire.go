package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhall/platform/internal/auth"
	"github.com/playhall/platform/internal/bonus"
	"github.com/playhall/platform/internal/guard"
	"github.com/playhall/platform/internal/handler"
	"github.com/playhall/platform/internal/infra"
	"github.com/playhall/platform/internal/jackpot"
	"github.com/playhall/platform/internal/ledger"
	"github.com/playhall/platform/internal/repository"
	"github.com/playhall/platform/internal/settlement"
	"github.com/redis/go-redis/v9"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	Config *infra.Config
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	logger := deps.Logger
	cfg := deps.Config

	loc, err := infra.LoadPlatformLocation(cfg.PlatformTZ)
	if err != nil {
		// Config.Validate already vetted the zone name.
		panic(err)
	}

	// Repositories
	playerRepo := repository.NewPlayerRepository()
	walletRepo := repository.NewWalletRepository()
	ledgerRepo := repository.NewLedgerRepository()
	betRepo := repository.NewBetRepository()
	sessionRepo := repository.NewSessionRepository()
	catalogRepo := repository.NewCatalogRepository()
	bonusRepo := repository.NewBonusRepository()
	jackpotRepo := repository.NewJackpotRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine and services
	engine := ledger.NewEngine(walletRepo, ledgerRepo, outboxRepo)
	walletSvc := ledger.NewService(pool, engine, walletRepo, ledgerRepo)
	settlementSvc := settlement.NewService(
		pool, engine, playerRepo, catalogRepo, sessionRepo, betRepo,
		cfg.SessionTTL, cfg.SettlementRetries, loc, logger,
	)
	progression := bonus.NewProgression(pool, engine, bonusRepo, betRepo, ledgerRepo, outboxRepo, logger)
	settlementSvc.SetProgression(progression)
	jackpotSvc := jackpot.NewService(pool, engine, jackpotRepo, outboxRepo, logger)

	limiter := guard.NewRateLimiter(deps.Redis, cfg.WagerRateLimit, cfg.WagerRateWindow)

	// Handlers
	wagerHandler := handler.NewWagerHandler(settlementSvc, sessionRepo, pool, limiter)
	walletHandler := handler.NewWalletHandler(walletSvc)
	jackpotHandler := handler.NewJackpotHandler(jackpotSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(deps.JWTMgr))

		r.Post("/wagers", wagerHandler.PlaceWager)
		r.Post("/sessions/{sessionID}/end", wagerHandler.EndSession)
		r.Post("/sessions/end", wagerHandler.EndAllSessions)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Get("/history", walletHandler.GetHistory)
			r.Post("/deposit", walletHandler.Deposit)
			r.Post("/withdraw", walletHandler.Withdraw)
		})

		r.Post("/jackpots/{eventID}/enter", jackpotHandler.Enter)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(deps.JWTMgr))
		r.Use(auth.RequireRole("operator", "superadmin"))

		r.Post("/admin/jackpots/{eventID}/draw", jackpotHandler.Draw)
	})

	return r
}
