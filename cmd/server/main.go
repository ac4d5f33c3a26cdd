package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/auth"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/cache"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/config"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/database"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/db"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore/memory"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore/postgres"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/handlers"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/health"
	h "github.com/VyasaPraveen/Pragathi-CRM/internal/http"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/payments"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/realtime"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/repositories"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/storage"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/whatsapp"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
	"github.com/VyasaPraveen/Pragathi-CRM/migrations"
)

func main() {
	inMemory := flag.Bool("memory", false, "keep documents in memory (development; data is lost on exit)")
	flag.Parse()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store and accounts
	var (
		store docstore.Store
		users session.Users
		roles session.Roles
	)
	if *inMemory {
		log.Println("[Main] running with in-memory documents")
		store = memory.New()
		u, err := seededUsers()
		if err != nil {
			log.Fatalf("[Main] %v", err)
		}
		users, roles = u, u
	} else {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("[Main] %v (use -memory to run without a database)", err)
		}
		defer pool.Close()

		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = database.NewMigrator(pool, migrations.FS).RunMigrations(migrateCtx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		userRepo := repositories.NewUserRepository(pool)
		profileRepo := repositories.NewProfileRepository(pool)
		if err := seedAdmin(ctx, userRepo, profileRepo); err != nil {
			log.Printf("[Main] admin seed skipped: %v", err)
		}
		store = postgres.New(pool)
		users, roles = userRepo, profileRepo
	}

	// Redis is optional; token revocation falls back to this instance only
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		log.Printf("[Redis] unavailable: %v (revocations stay local)", err)
	} else {
		log.Println("[Redis] connected")
		defer cache.Close()
	}

	// Realtime adapter over the store's change feed
	adapter := realtime.NewAdapter(store)
	go adapter.Run(ctx)
	defer adapter.Close()

	// Sessions and per-session workspaces
	expiration := time.Duration(cfg.JWT.ExpirationHours) * time.Hour
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, expiration)
	sessions := session.NewManager(users, roles, jwtManager)
	registry := workspace.NewRegistry(adapter, cfg.Lazy())
	registry.Attach(sessions)
	defer registry.CloseAll()
	go sessions.RunSweeper(ctx, 5*time.Minute)
	log.Printf("[Main] realtime mode: %s", cfg.Realtime.Mode)

	// Integrations
	sender := whatsapp.NewProvider(whatsapp.Config{
		Provider:      cfg.WhatsApp.Provider,
		APIKey:        cfg.WhatsApp.APIKey,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		CountryCode:   cfg.WhatsApp.CountryCode,
	})
	if sender != nil {
		log.Printf("[Main] WhatsApp delivery via %s", sender.Name())
	}
	svc := views.NewService(adapter, sender, cfg.WhatsApp.CountryCode)

	var photos handlers.Photos
	if cfg.Storage.Enabled() {
		gallery, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			log.Printf("[Storage] disabled: %v", err)
		} else {
			photos = gallery
			log.Printf("[Storage] gallery bucket %s", cfg.Storage.Bucket)
		}
	}

	gateway := payments.NewService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	if !gateway.Enabled() {
		log.Println("[Payments] Razorpay credentials not set, payment orders disabled")
	}

	router := h.NewRouter(h.Handlers{
		Auth:     handlers.NewAuthHandler(sessions, svc),
		Pages:    handlers.NewPageHandler(svc),
		Docs:     handlers.NewDocumentHandler(svc),
		Gallery:  handlers.NewGalleryHandler(svc, photos),
		Reports:  handlers.NewReportHandler(svc),
		Payments: handlers.NewPaymentHandler(svc, gateway),
		Health:   handlers.NewHealthHandler(health.NewHealthChecker(store, sessions.Count)),
	}, middleware.NewAuthMiddleware(sessions, registry))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.NewCORS(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}

// seedAdmin creates the first admin from SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD when that account does not exist yet.
func seedAdmin(ctx context.Context, userRepo *repositories.UserRepository, profileRepo *repositories.ProfileRepository) error {
	email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &models.User{Email: email, Name: os.Getenv("SEED_ADMIN_NAME"), PasswordHash: hash, IsActive: true}
	if err := userRepo.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if err := profileRepo.SetRole(ctx, u.ID, string(session.RoleAdmin)); err != nil {
		return fmt.Errorf("set admin role: %w", err)
	}
	log.Printf("[Main] seeded admin %s", email)
	return nil
}
