package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/syncuphq/syncup-backend/api/routes"
	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/internal/auth"
	"github.com/syncuphq/syncup-backend/internal/events"
	"github.com/syncuphq/syncup-backend/internal/memberships"
	"github.com/syncuphq/syncup-backend/internal/newsletters"
	"github.com/syncuphq/syncup-backend/internal/organizations"
	"github.com/syncuphq/syncup-backend/internal/posts"
	"github.com/syncuphq/syncup-backend/internal/roles"
	"github.com/syncuphq/syncup-backend/internal/subscriptions"
	"github.com/syncuphq/syncup-backend/internal/users"
	"github.com/syncuphq/syncup-backend/pkg/auth/session"
	"github.com/syncuphq/syncup-backend/pkg/config"
	"github.com/syncuphq/syncup-backend/pkg/db"
	"github.com/syncuphq/syncup-backend/pkg/logger"
	"github.com/syncuphq/syncup-backend/pkg/migrate"
	"github.com/syncuphq/syncup-backend/pkg/outbox"
	"github.com/syncuphq/syncup-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	orgRepo := organizations.NewRepository(gormDB)
	membersRepo := memberships.NewRepository(gormDB)
	rolesRepo := roles.NewRepository(gormDB)
	tiersRepo := memberships.NewTiersRepository(gormDB)
	paymentsRepo := subscriptions.NewPaymentsRepository(gormDB)
	eventsRepo := events.NewRepository(gormDB)
	postsRepo := posts.NewRepository(gormDB)
	newslettersRepo := newsletters.NewRepository(gormDB)
	activityRepo := activity.NewRepository(gormDB)

	trail := activity.NewEmitter(outbox.NewService(outbox.NewRepository(gormDB), logg))

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	orgService, err := organizations.NewService(organizations.ServiceParams{
		OrgRepo:           orgRepo,
		MemberRepo:        membersRepo,
		RoleRepo:          rolesRepo,
		Activity:          trail,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create organizations service", err)
		os.Exit(1)
	}

	roleService, err := roles.NewService(roles.ServiceParams{
		RoleRepo:   rolesRepo,
		MemberRepo: membersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create roles service", err)
		os.Exit(1)
	}

	tiersService, err := memberships.NewTiersService(tiersRepo, membersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create tiers service", err)
		os.Exit(1)
	}

	invoiceClient, err := subscriptions.NewXenditInvoiceClient(cfg.Xendit.APIKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create xendit client", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		MemberRepo:        membersRepo,
		RoleRepo:          rolesRepo,
		TierRepo:          tiersRepo,
		OrgRepo:           orgRepo,
		UserRepo:          usersRepo,
		PaymentRepo:       paymentsRepo,
		Invoices:          invoiceClient,
		Activity:          trail,
		TransactionRunner: dbClient,
		Logger:            logg,
		SiteURL:           cfg.App.SiteURL,
		Currency:          cfg.Xendit.Currency,
		Registrations:     eventsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	eventService, err := events.NewService(events.ServiceParams{
		EventRepo:         eventsRepo,
		RoleCatalog:       rolesRepo,
		TierCatalog:       tiersRepo,
		MemberRepo:        membersRepo,
		OrgRepo:           orgRepo,
		UserRepo:          usersRepo,
		PaymentRepo:       paymentsRepo,
		Invoices:          invoiceClient,
		Activity:          trail,
		TransactionRunner: dbClient,
		Logger:            logg,
		SiteURL:           cfg.App.SiteURL,
		Currency:          cfg.Xendit.Currency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	postService, err := posts.NewService(posts.ServiceParams{
		PostRepo:          postsRepo,
		RoleCatalog:       rolesRepo,
		TierCatalog:       tiersRepo,
		MemberRepo:        membersRepo,
		OrgRepo:           orgRepo,
		Activity:          trail,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create posts service", err)
		os.Exit(1)
	}

	newsletterService, err := newsletters.NewService(newsletters.ServiceParams{
		NewsletterRepo:    newslettersRepo,
		OrgRepo:           orgRepo,
		EventRepo:         eventsRepo,
		Mailer:            newsletters.NewResendMailer(cfg.Resend.APIKey),
		Activity:          trail,
		TransactionRunner: dbClient,
		Logger:            logg,
		FromEmail:         cfg.Resend.DefaultFrom,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletters service", err)
		os.Exit(1)
	}

	invoiceGuard, err := subscriptions.NewInvoiceGuard(redisClient, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			OrgService:      orgService,
			RoleService:     roleService,
			TiersService:    tiersService,
			MembershipsRepo: membersRepo,
			UsersRepo:       usersRepo,
			Subscriptions:   subscriptionService,
			PaymentsRepo:    paymentsRepo,
			InvoiceGuard:    invoiceGuard,
			Events:          eventService,
			Posts:           postService,
			Newsletters:     newsletterService,
			ActivityRepo:    activityRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
