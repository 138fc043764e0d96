package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/hrygo/shopsense/internal/profile"
	"github.com/hrygo/shopsense/plugin/ai/cache"
	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/metrics"
	"github.com/hrygo/shopsense/plugin/ai/routing"
	"github.com/hrygo/shopsense/plugin/ai/tools"
	apiv1 "github.com/hrygo/shopsense/server/router/api/v1"
	"github.com/hrygo/shopsense/server/service/chat"
	"github.com/hrygo/shopsense/store"
	"github.com/hrygo/shopsense/store/db"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopsense",
		Short: "AI-assisted conversation routing with human handoff for e-commerce support",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopsense %s (commit: %s)\n", Version, Commit)
		},
	}
}

func runServer(ctx context.Context) error {
	instanceProfile := &profile.Profile{Version: Version}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting shopsense",
		"version", Version,
		"mode", instanceProfile.Mode,
		"driver", instanceProfile.Driver,
		"port", instanceProfile.Port)

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	defer storeInstance.Close()
	if err := storeInstance.Migrate(ctx); err != nil {
		return err
	}

	chatService, metricsService := buildRoutingStack(instanceProfile, storeInstance)
	if err := chatService.Recover(ctx); err != nil {
		return err
	}

	janitor := chat.NewJanitor(chatService, chat.JanitorConfig{
		IdleTTL:       instanceProfile.IdleConversationTTL,
		SweepInterval: instanceProfile.JanitorInterval,
	})
	if err := janitor.Start(ctx); err != nil {
		return err
	}
	defer janitor.Stop()

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())

	apiService := apiv1.NewAPIV1Service(instanceProfile, storeInstance, chatService, metricsService)
	apiService.RegisterRoutes(echoServer)
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	address := fmt.Sprintf("%s:%d", instanceProfile.Addr, instanceProfile.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- echoServer.Start(address)
	}()
	slog.Info("server listening", "address", address)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown was not clean", "error", err)
	}
	slog.Info("shopsense stopped")
	return nil
}

// buildRoutingStack assembles the classifier, routing policy, tool registry,
// metrics, and chat service from the profile.
func buildRoutingStack(instanceProfile *profile.Profile, storeInstance *store.Store) (*chat.ChatService, metrics.MetricsService) {
	// An unconfigured classifier fails every call with NOT_CONFIGURED,
	// which the routing policy turns into a forced handoff. The engine
	// stays useful without an API key.
	base := classifier.NewOpenAIClassifier(classifier.Config{
		APIKey:      instanceProfile.AIAPIKey,
		BaseURL:     instanceProfile.AIBaseURL,
		Model:       instanceProfile.AIModel,
		MaxTokens:   instanceProfile.AIMaxTokens,
		Timeout:     instanceProfile.ClassifyTimeout,
		Concurrency: instanceProfile.ClassifyConcurrency,
		RPS:         instanceProfile.ClassifyRPS,
	})
	var clf classifier.Classifier = classifier.NewRetryClassifier(
		base, instanceProfile.ClassifyRetries, instanceProfile.ClassifyRetryDelay)
	if !instanceProfile.IsAIEnabled() {
		slog.Warn("AI classification is not configured, every message will be handed off")
	}

	cacheService := cache.NewService(cache.DefaultServiceConfig())
	catalog := demoCatalog()
	registry := tools.NewRegistry(
		tools.NewProductSearchTool(catalog),
		tools.NewShippingFeeTool(catalog),
		tools.NewPromotionTool(catalog, cacheService),
		tools.NewStoreInfoTool(catalog, cacheService),
	)

	metricsService := metrics.NewService(storeInstance)
	chatService := chat.NewChatService(chat.Config{
		Classifier: clf,
		Policy:     routing.NewPolicy(instanceProfile.ConfidenceThreshold, registry),
		Store:      storeInstance,
		Metrics:    metricsService,
		Logger:     slog.Default(),
	})
	return chatService, metricsService
}

// demoCatalog is the built-in catalog used until a real product backend is
// plugged in behind the tool provider interfaces.
func demoCatalog() *tools.StaticCatalog {
	return &tools.StaticCatalog{
		Products: []tools.Product{
			{ID: "p-1", Name: "Classic Cotton T-Shirt", Price: 19.90, Stock: 120},
			{ID: "p-2", Name: "Slim Fit Jeans", Price: 49.00, Stock: 45},
			{ID: "p-3", Name: "Canvas Sneakers", Price: 39.50, Stock: 0},
		},
		Promotions: []tools.Promotion{
			{Code: "WELCOME10", Description: "10% off your first order", Discount: 0.10},
		},
		Info: map[string]any{
			"hours":    "09:00-21:00",
			"address":  "12 Market Street",
			"support":  "support@shopsense.example",
			"shipping": "2-4 business days",
		},
		FeePerKg: 8.0,
	}
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		slog.Error("shopsense failed", "error", err)
		os.Exit(1)
	}
}
