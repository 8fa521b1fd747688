package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/auth"
	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/config"
	"shaaban-furniture-backend/controllers"
	"shaaban-furniture-backend/media"
	"shaaban-furniture-backend/routes"
	"shaaban-furniture-backend/services"
	"shaaban-furniture-backend/store"
)

func openStore(ctx context.Context, cfg *config.AppConfig, logger *log.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoMode)
		if err != nil {
			return nil, err
		}
		return store.NewMongo(client.Database(cfg.MongoDatabase), cfg.PollInterval, logger), nil
	case config.DriverFirestore:
		client, err := config.ConnectFirestore(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, err
		}
		return store.NewFirestore(client), nil
	}
	logger.Println("Using the in-memory store; data is lost on restart")
	return store.NewMemory(), nil
}

func main() {
	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL, "")
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		uploader = cld
	} else {
		logger.Println("CLOUDINARY_URL not set, image uploads are disabled")
	}

	var gen ai.Generator = ai.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("gemini: %v", err)
		}
		gen = gemini
	} else {
		logger.Println("GEMINI_API_KEY not set, AI features will use fallbacks")
	}

	tokens, err := auth.NewTokenIssuer(cfg.PasetoSecretKey, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	carts := cart.NewRegistry(cfg.CartDir, logger)
	defer carts.Close()

	roles := access.NewRoleResolver(st, logger)
	assistant := ai.NewAssistant(gen, logger)
	products := services.NewProductService(st, uploader, logger)
	orders := services.NewOrderService(st, products, logger)

	ctrl := &controllers.Controller{
		Store:     st,
		Tokens:    tokens,
		Auth:      auth.NewService(st, auth.GoogleVerifier{ClientID: cfg.GoogleClientID}),
		Roles:     roles,
		Products:  products,
		Orders:    orders,
		Reviews:   services.NewReviewService(st, logger),
		Users:     services.NewUserService(st, roles, logger),
		Inbox:     services.NewInboxService(st, logger),
		Stats:     services.NewStatsService(st),
		Reports:   services.NewReportService(orders, products, catalog, assistant, logger),
		Recs:      services.NewRecommendationService(products, carts, assistant, logger),
		Assistant: assistant,
		Carts:     carts,
		Catalog:   catalog,
		Env:       cfg.Env,
		Logger:    logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.Setup(ctrl, cfg.Env, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		// Live streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Printf("Server running on http://localhost:%s (store: %s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Printf("close store: %v", err)
	}
}
