package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/equalify/equalify/docs"
	"github.com/equalify/equalify/internal/budget"
	"github.com/equalify/equalify/internal/config"
	"github.com/equalify/equalify/internal/database"
	"github.com/equalify/equalify/internal/expense"
	"github.com/equalify/equalify/internal/friend"
	"github.com/equalify/equalify/internal/group"
	"github.com/equalify/equalify/internal/notification"
	"github.com/equalify/equalify/internal/user"
	"github.com/equalify/equalify/pkg/auth"
	mw "github.com/equalify/equalify/pkg/middleware"
)

// @title           Equalify API
// @version         1.0
// @description     Shared expense tracking: friends, groups, split expenses and settlements.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, tokens)
	userHandler := user.NewHandler(userService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Friend feature (pairwise balances and settlements)
	friendRepo := friend.NewRepository(db)
	friendService := friend.NewService(friendRepo, userRepo, notificationService)
	friendHandler := friend.NewHandler(friendService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	// Expense feature, folding shares into the friend ledger
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, friendService, groupRepo)
	expenseHandler := expense.NewHandler(expenseService)

	// Deleting a group purges its expenses first
	groupService.SetExpensePurger(expenseService)

	// Budget feature
	budgetRepo := budget.NewRepository(db)
	budgetService := budget.NewService(budgetRepo)
	budgetHandler := budget.NewHandler(budgetService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes())

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(tokens))

			r.Mount("/users", userHandler.Routes())
			r.Mount("/friends", friendHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/budgets", budgetHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
