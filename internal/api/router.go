package api

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/despesas-be/internal/api/handlers"
	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/services"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	DB         *sql.DB
	Tokens     *auth.TokenService
	Users      services.UserServiceProvider
	Categories services.CategoryServiceProvider
	Expenses   services.ExpenseServiceProvider
	Audit      services.AuditServiceProvider
	Stats      handlers.SnapshotSource

	CORSOrigins        []string
	LoginRatePerMinute int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(socketAddr)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens, deps.Audit)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories, deps.Audit)
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses, deps.Audit)
	dashboardHandler := handlers.NewDashboardHandler(deps.Expenses)
	auditHandler := handlers.NewAuditHandler(deps.Audit)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Stats)

	r.Get("/healthz", healthHandler.Get)

	// Credential endpoints share one per-IP budget.
	limiter := newIPRateLimiter(deps.LoginRatePerMinute)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Post("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(deps.Tokens))

		r.Get("/me", userHandler.GetMe)

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", categoryHandler.GetAll)
			r.Post("/", categoryHandler.Create)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/despesas", func(r chi.Router) {
			r.Get("/", expenseHandler.GetAll)
			r.Post("/", expenseHandler.Create)
			r.Put("/{id}", expenseHandler.Update)
			r.Delete("/{id}", expenseHandler.Delete)
		})

		r.Get("/dashboard", dashboardHandler.Get)
		r.Get("/logs", auditHandler.GetRecent)
	})

	return r
}
