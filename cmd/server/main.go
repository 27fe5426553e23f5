package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docsync/internal/api"
	"docsync/internal/docstore"
	"docsync/internal/identity"
	"docsync/internal/routers"
	"docsync/internal/session"
	"docsync/internal/utils"
)

var (
	defaultPort      = "8080"
	defaultDBPath    = "docsync.db"
	defaultJWTSecret = "dev-secret"

	listenAndServe = http.ListenAndServe
	exitFunc       = defaultExit
	exit           = os.Exit
)

func defaultExit(err error) {
	log.Println(err)
	exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context) error {
	logger := utils.NewLogger()
	defer logger.Sync()

	db, err := docstore.Open(envOr("DATABASE_URL", defaultDBPath))
	if err != nil {
		return err
	}
	repo := docstore.NewRepository(db)

	verifier := identity.NewVerifier([]byte(envOr("JWT_SECRET", defaultJWTSecret)))

	// The bus is optional: without REDIS_ADDR the instance serves its
	// documents alone, which is the default deployment.
	var bus *session.Bus
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		bus, err = session.NewBus(ctx, addr, logger)
		if err != nil {
			return err
		}
		defer bus.Close()
	}

	store := session.NewRoomStore()
	registry := session.NewRegistry()
	router := session.NewRouter(logger, store, registry, bus)
	if bus != nil {
		go bus.Run(ctx)
	}

	h := api.NewHandlers(logger, router, verifier, repo)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Mount("/", routers.New(h, verifier))
	r.Get("/healthz", healthHandler)

	addr := ":" + envOr("PORT", defaultPort)
	log.Printf("docsync listening on %s", addr)
	return listenAndServe(addr, r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
