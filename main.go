package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/estatehub/backend/config"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/routes"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/estatehub/backend/workflow"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func setupRouter(deps routes.Deps) *mux.Router {
	router := mux.NewRouter()
	routes.Routes(router, deps)
	return router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.SetJWTKey(cfg.JWTKey)

	client, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer config.CloseDBConnection(client)

	config.InitCollections(client, cfg)
	if err := config.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	redisClient := config.InitRedis(cfg)

	users := store.NewUserStore()
	lands := store.NewPropertyStore(models.KindLand)
	houses := store.NewPropertyStore(models.KindHouse)
	apartments := store.NewPropertyStore(models.KindApartment)
	services := store.NewServiceStore()
	payments := store.NewPaymentStore()
	favorites := store.NewFavoriteStore()
	catalog := store.NewCatalog()

	deps := routes.Deps{
		Users:      users,
		Lands:      lands,
		Houses:     houses,
		Apartments: apartments,
		Services:   services,
		Payments:   payments,
		Favorites:  favorites,

		Acquisition:   workflow.NewAcquisition(payments, catalog, users, workflow.NewSimulatedGateway()),
		Subscriptions: workflow.NewSubscriptions(services, users),
		Bookmarks:     workflow.NewFavorites(favorites, catalog, users),

		Redis: redisClient,
	}

	router := setupRouter(deps)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
