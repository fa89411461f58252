package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncuphq/syncup-backend/api/controllers"
	webhookcontrollers "github.com/syncuphq/syncup-backend/api/controllers/webhooks"
	"github.com/syncuphq/syncup-backend/api/middleware"
	"github.com/syncuphq/syncup-backend/internal/activity"
	"github.com/syncuphq/syncup-backend/internal/auth"
	"github.com/syncuphq/syncup-backend/internal/events"
	"github.com/syncuphq/syncup-backend/internal/memberships"
	"github.com/syncuphq/syncup-backend/internal/newsletters"
	"github.com/syncuphq/syncup-backend/internal/organizations"
	"github.com/syncuphq/syncup-backend/internal/posts"
	"github.com/syncuphq/syncup-backend/internal/roles"
	subscriptionsvc "github.com/syncuphq/syncup-backend/internal/subscriptions"
	"github.com/syncuphq/syncup-backend/internal/users"
	"github.com/syncuphq/syncup-backend/pkg/auth/session"
	"github.com/syncuphq/syncup-backend/pkg/config"
	"github.com/syncuphq/syncup-backend/pkg/logger"
	"github.com/syncuphq/syncup-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	Sessions        session.AccessSessionChecker
	AuthService     auth.Service
	OrgService      organizations.Service
	RoleService     roles.Service
	TiersService    *memberships.TiersService
	MembershipsRepo *memberships.Repository
	UsersRepo       *users.Repository
	Subscriptions   subscriptionsvc.Service
	PaymentsRepo    *subscriptionsvc.PaymentsRepository
	InvoiceGuard    *subscriptionsvc.InvoiceGuard
	Events          events.Service
	Posts           posts.Service
	Newsletters     newsletters.Service
	ActivityRepo    *activity.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.SiteURL),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/xendit", webhookcontrollers.XenditInvoice(deps.Subscriptions, cfg.Xendit.CallbackToken, deps.InvoiceGuard, logg))
	})

	authed := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(authed).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	// Organization discovery stays public so prospective members can browse.
	r.Route("/api/v1/orgs", func(r chi.Router) {
		r.Get("/", controllers.OrgList(deps.OrgService, logg))
		r.Get("/slug/{slug}", controllers.OrgGetBySlug(deps.OrgService, logg))
		r.With(authed).Post("/", controllers.OrgCreate(deps.OrgService, logg))

		r.Route("/{orgID}", func(r chi.Router) {
			r.Get("/", controllers.OrgGet(deps.OrgService, logg))

			r.Group(func(r chi.Router) {
				r.Use(authed)

				r.Put("/", controllers.OrgUpdate(deps.OrgService, logg))
				r.Delete("/", controllers.OrgDelete(deps.OrgService, logg))
				r.Post("/join", controllers.OrgJoin(deps.OrgService, logg))
				r.Post("/leave", controllers.OrgLeave(deps.OrgService, logg))
				r.Get("/requests", controllers.OrgListRequests(deps.OrgService, logg))
				r.Get("/members", controllers.OrgMembers(deps.MembershipsRepo, logg))
				r.Get("/payments", controllers.OrgPayments(deps.PaymentsRepo, logg))
				r.Get("/activities", controllers.ActivityList(deps.ActivityRepo, logg))

				r.Route("/roles", func(r chi.Router) {
					r.Get("/", controllers.RoleList(deps.RoleService, logg))
					r.Post("/", controllers.RoleCreate(deps.RoleService, logg))
					r.Post("/assign", controllers.RoleAssign(deps.RoleService, logg))
					r.Put("/{roleID}", controllers.RoleRename(deps.RoleService, logg))
					r.Delete("/{roleID}", controllers.RoleDelete(deps.RoleService, logg))
				})

				r.Route("/tiers", func(r chi.Router) {
					r.Get("/", controllers.TierList(deps.TiersService, logg))
					r.Post("/", controllers.TierCreate(deps.TiersService, logg))
					r.Put("/{tierID}", controllers.TierUpdate(deps.TiersService, logg))
					r.Delete("/{tierID}", controllers.TierRetire(deps.TiersService, logg))
					r.Get("/{tierID}/members", controllers.TierMembers(deps.TiersService, logg))
					r.Post("/{tierID}/subscribe", controllers.Subscribe(deps.Subscriptions, logg))
					r.Post("/{tierID}/confirm", controllers.ConfirmSubscribe(deps.Subscriptions, logg))
				})

				r.Get("/events", controllers.EventList(deps.Events, logg))
				r.Post("/events", controllers.EventCreate(deps.Events, logg))

				r.Get("/posts", controllers.PostList(deps.Posts, logg))
				r.Post("/posts", controllers.PostCreate(deps.Posts, logg))

				r.Route("/newsletters", func(r chi.Router) {
					r.Get("/", controllers.NewsletterList(deps.Newsletters, logg))
					r.Post("/", controllers.NewsletterSend(deps.Newsletters, logg))
				})
			})
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authed)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.Me(deps.UsersRepo, logg))
			r.Put("/", controllers.MeUpdate(deps.UsersRepo, logg))
			r.Get("/organizations", controllers.MeOrganizations(deps.MembershipsRepo, logg))
			r.Get("/activities", controllers.MeActivities(deps.ActivityRepo, logg))
		})

		r.Delete("/tiers/{tierID}/subscription", controllers.CancelSubscription(deps.Subscriptions, logg))

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", controllers.EventGet(deps.Events, logg))
			r.Put("/", controllers.EventUpdate(deps.Events, logg))
			r.Delete("/", controllers.EventDelete(deps.Events, logg))
			r.Post("/register", controllers.EventRegister(deps.Events, logg))
			r.Delete("/register", controllers.EventCancelRegistration(deps.Events, logg))
			r.Get("/registrations", controllers.EventRegistrations(deps.Events, logg))
			r.Post("/registrations/{userID}/attendance", controllers.EventMarkAttendance(deps.Events, logg))
		})

		r.Route("/posts/{postID}", func(r chi.Router) {
			r.Get("/", controllers.PostGet(deps.Posts, logg))
			r.Put("/", controllers.PostUpdate(deps.Posts, logg))
			r.Delete("/", controllers.PostDelete(deps.Posts, logg))
			r.Get("/comments", controllers.PostComments(deps.Posts, logg))
			r.Post("/comments", controllers.PostComment(deps.Posts, logg))
		})
		r.Delete("/comments/{commentID}", controllers.PostDeleteComment(deps.Posts, logg))

		r.Route("/requests/{requestID}", func(r chi.Router) {
			r.Post("/accept", controllers.OrgAcceptRequest(deps.OrgService, logg))
			r.Post("/decline", controllers.OrgDeclineRequest(deps.OrgService, logg))
		})
	})

	return r
}
