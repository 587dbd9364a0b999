package router

import (
	"net/http"

	"rentbroker/internal/config"
	"rentbroker/internal/handlers"
	"rentbroker/internal/middleware"
	"rentbroker/internal/models"
	"rentbroker/internal/services"
	"rentbroker/internal/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func SetupRouter(gdb *gorm.DB, cfg config.Config, logger zerolog.Logger) http.Handler {
	tx := store.NewTxManager(gdb)
	userRepo := store.NewUserRepository(gdb)
	propertyRepo := store.NewPropertyRepository(gdb)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, logger)
	resolver := services.NewIdentityResolver(tokens, userRepo, logger)
	userService := services.NewUserService(userRepo, tx, services.NewBcryptHasher(cfg.BcryptCost), tokens, logger)
	propertyService := services.NewPropertyService(propertyRepo, tx, logger)
	applicationService := services.NewApplicationService(store.NewApplicationRepository(gdb), propertyRepo, tx, logger)
	viewingService := services.NewViewingService(store.NewViewingRepository(gdb), propertyRepo, tx, logger)

	authHandler := handlers.NewAuthHandler(userService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	propertyHandler := handlers.NewPropertyHandler(propertyService, logger)
	applicationHandler := handlers.NewApplicationHandler(applicationService, logger)
	viewingHandler := handlers.NewViewingHandler(viewingService, logger)

	var guard services.Guard
	admin := middleware.RequireRole(guard, models.RoleAdmin, logger)
	owner := middleware.RequireRole(guard, models.RoleOwner, logger)
	tenant := middleware.RequireRole(guard, models.RoleTenant, logger)

	r := mux.NewRouter()

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestValidation())
	api.Use(middleware.Authentication(resolver, logger))

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.Handle("/me", middleware.RequireAuthenticated(http.HandlerFunc(authHandler.Me))).Methods("GET")

	properties := api.PathPrefix("/properties").Subrouter()
	properties.HandleFunc("", propertyHandler.Search).Methods("GET")
	properties.Handle("", owner(http.HandlerFunc(propertyHandler.Create))).Methods("POST")
	properties.Handle("/my", owner(http.HandlerFunc(propertyHandler.ListMine))).Methods("GET")
	properties.Handle("/pending", admin(http.HandlerFunc(propertyHandler.ListPending))).Methods("GET")
	properties.HandleFunc("/{id:[0-9]+}", propertyHandler.Get).Methods("GET")
	properties.Handle("/{id:[0-9]+}", owner(http.HandlerFunc(propertyHandler.Update))).Methods("PUT")
	properties.Handle("/{id:[0-9]+}/resubmit", owner(http.HandlerFunc(propertyHandler.Resubmit))).Methods("POST")
	properties.Handle("/{id:[0-9]+}/approve", admin(http.HandlerFunc(propertyHandler.Approve))).Methods("POST")
	properties.Handle("/{id:[0-9]+}/reject", admin(http.HandlerFunc(propertyHandler.Reject))).Methods("POST")

	applications := api.PathPrefix("/applications").Subrouter()
	applications.Handle("", tenant(http.HandlerFunc(applicationHandler.Submit))).Methods("POST")
	applications.Handle("/my", tenant(http.HandlerFunc(applicationHandler.ListMine))).Methods("GET")
	applications.Handle("/owner", owner(http.HandlerFunc(applicationHandler.ListForOwner))).Methods("GET")
	applications.Handle("/{id:[0-9]+}/approve", owner(http.HandlerFunc(applicationHandler.Approve))).Methods("POST")
	applications.Handle("/{id:[0-9]+}/reject", owner(http.HandlerFunc(applicationHandler.Reject))).Methods("POST")

	viewings := api.PathPrefix("/viewings").Subrouter()
	viewings.Handle("", tenant(http.HandlerFunc(viewingHandler.Request))).Methods("POST")
	viewings.Handle("/my", tenant(http.HandlerFunc(viewingHandler.ListMine))).Methods("GET")
	viewings.Handle("/owner", owner(http.HandlerFunc(viewingHandler.ListForOwner))).Methods("GET")
	viewings.Handle("/{id:[0-9]+}/confirm", owner(http.HandlerFunc(viewingHandler.Confirm))).Methods("POST")
	viewings.Handle("/{id:[0-9]+}/decline", owner(http.HandlerFunc(viewingHandler.Decline))).Methods("POST")
	viewings.Handle("/{id:[0-9]+}/complete", owner(http.HandlerFunc(viewingHandler.Complete))).Methods("POST")

	users := api.PathPrefix("/users").Subrouter()
	users.Use(admin)
	users.HandleFunc("", userHandler.GetUsers).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}", userHandler.GetUser).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}/activate", userHandler.Activate).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/deactivate", userHandler.Deactivate).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/verify", userHandler.Verify).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/roles/{role}", userHandler.AssignRole).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/roles/{role}", userHandler.RemoveRole).Methods("DELETE")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// outermost so preflight requests are answered before routing
	return middleware.CORS(cfg.CORSAllowedOrigins)(r)
}
