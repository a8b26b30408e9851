package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/khidmajo/khidma-api/internal/auth"
	"github.com/khidmajo/khidma-api/internal/category"
	categoryrepo "github.com/khidmajo/khidma-api/internal/category/repo"
	"github.com/khidmajo/khidma-api/internal/config"
	"github.com/khidmajo/khidma-api/internal/demo"
	"github.com/khidmajo/khidma-api/internal/request"
	requestrepo "github.com/khidmajo/khidma-api/internal/request/repo"
	"github.com/khidmajo/khidma-api/internal/router"
	"github.com/khidmajo/khidma-api/internal/user"
	userrepo "github.com/khidmajo/khidma-api/internal/user/repo"
	"github.com/khidmajo/khidma-api/internal/verification"
	verificationrepo "github.com/khidmajo/khidma-api/internal/verification/repo"
	"github.com/khidmajo/khidma-api/pkg/database"
	"github.com/khidmajo/khidma-api/pkg/utilities"
)

// stores collects the repository interfaces the services consume, so the
// postgres and in-memory wiring paths stay symmetric.
type stores struct {
	authUsers  auth.UserStore
	adminUsers user.Store
	verifUsers verification.UserVerifier
	requests   request.Store
	verifs     verification.Store
	categories category.Store
}

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting khidma-api")

	cfg, err := config.New()
	if err != nil {
		sugar.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher := auth.PBKDF2Hasher{}

	var st stores
	if cfg.DatabaseURL == "" {
		sugar.Warn("DATABASE_URL not set; running with seeded in-memory stores")
		mem := demo.NewStores()
		if err := demo.Seed(ctx, mem, hasher); err != nil {
			sugar.Fatalf("seed demo data: %v", err)
		}
		st = stores{
			authUsers:  mem.Users,
			adminUsers: mem.Users,
			verifUsers: mem.Users,
			requests:   mem.Requests,
			verifs:     mem.Verifications,
			categories: mem.Categories,
		}
	} else {
		sqlDB, err := database.Connect(database.Config{
			DSN:            cfg.DatabaseURL,
			TimeZone:       cfg.DatabaseTimeZone,
			ClientEncoding: cfg.DatabaseClientEncoding,
		})
		if err != nil {
			sugar.Fatalf("db connect: %v", err)
		}
		defer sqlDB.Close()

		// wrap with sqlx for convenience in repos
		db := sqlx.NewDb(sqlDB, "postgres")

		users := userrepo.NewUserRepo(db)
		requests := requestrepo.NewRequestRepo(db)
		verifs := verificationrepo.NewVerificationRepo(db)
		categories := categoryrepo.NewCategoryRepo(db)
		for name, ensure := range map[string]func(context.Context) error{
			"users":         users.EnsureTable,
			"requests":      requests.EnsureTable,
			"verifications": verifs.EnsureTable,
			"categories":    categories.EnsureTable,
		} {
			if err := ensure(ctx); err != nil {
				sugar.Fatalf("ensure %s table: %v", name, err)
			}
		}
		st = stores{
			authUsers:  users,
			adminUsers: users,
			verifUsers: users,
			requests:   requests,
			verifs:     verifs,
			categories: categories,
		}
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	revoker := auth.NewRevoker()
	mw := auth.NewMiddleware(tokens, revoker)
	limiter := auth.NewRateLimiter()
	limiter.TrustForwardedFor = cfg.RateLimit.TrustForwardedFor

	verifSvc := verification.NewService(st.verifs, st.verifUsers)
	authSvc := auth.NewService(st.authUsers, verifSvc, hasher, tokens)
	userSvc := user.NewService(st.adminUsers, st.requests, revoker)
	requestSvc := request.NewService(st.requests)
	categorySvc := category.NewService(st.categories)

	handler := router.RegisterRoutes(sugar, mw, router.Handlers{
		Auth:         auth.NewHandler(authSvc, limiter, cfg.RateLimit, sugar),
		Users:        user.NewHandler(userSvc, sugar),
		Verification: verification.NewHandler(verifSvc, sugar),
		Requests:     request.NewHandler(requestSvc, sugar),
		Categories:   category.NewHandler(categorySvc, sugar),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	go func() {
		sugar.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
