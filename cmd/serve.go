package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/controller"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/gateway"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/notification"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/repository"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/service"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook HTTP server",
	Long:  "Start the HTTP server that receives and reconciles payment provider webhooks.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, recon, registry, cleanup := mustCreateReconciliationService()
	defer cleanup()

	webhookController := controller.NewWebhookController(registry, recon)
	e := setupHTTPServer(webhookController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(webhookController *controller.WebhookController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())

	e.GET("/health", webhookController.Health)

	webhooks := e.Group("/webhooks")
	webhooks.POST("/stripe", webhookController.HandleStripe)
	webhooks.POST("/jazzcash", webhookController.HandleJazzCash)
	webhooks.POST("/easypaisa", webhookController.HandleEasyPaisa)
	webhooks.POST("/payfast", webhookController.HandlePayFast)

	return e
}

func mustCreateReconciliationService() (*config.Config, *service.ReconciliationService, *gateway.Registry, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	bookingRepo := repository.NewBookingRepository(db)
	trainRepo := repository.NewTrainBookingRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	registry := buildGatewayRegistry(cfg)

	var publisher notification.Publisher
	var amqpPublisher *notification.AMQPPublisher
	if strings.TrimSpace(cfg.AMQP.URL) != "" {
		amqpPublisher, err = notification.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to connect to notification broker")
		}
		publisher = amqpPublisher
	} else {
		logrus.Warn("AMQP_URL is not set, notifications will only be logged")
		publisher = notification.NewLogPublisher()
	}

	recon := service.NewReconciliationService(
		bookingRepo,
		trainRepo,
		eventRepo,
		publisher,
		cfg.Webhooks.NotifyTimeout,
	)

	cleanup := func() {
		if amqpPublisher != nil {
			if err := amqpPublisher.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close notification broker connection")
			}
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, recon, registry, cleanup
}

// buildGatewayRegistry constructs each gateway with its verification
// strategy selected once: real when credentials are present, mock only
// when explicitly allowed, fail-closed otherwise.
func buildGatewayRegistry(cfg *config.Config) *gateway.Registry {
	allowMock := cfg.Webhooks.AllowMockVerification

	stripeVerifier := gateway.SelectVerifier(
		gateway.GatewayNameStripe,
		gateway.NewStripeVerifier(gateway.StripeConfig{
			WebhookSecret:             cfg.Stripe.WebhookSecret,
			SignatureToleranceSeconds: cfg.Stripe.SignatureToleranceSeconds,
		}),
		strings.TrimSpace(cfg.Stripe.WebhookSecret) != "",
		allowMock,
	)

	jazzCashVerifier := gateway.SelectVerifier(
		gateway.GatewayNameJazzCash,
		gateway.NewJazzCashVerifier(gateway.JazzCashConfig{
			MerchantID:    cfg.JazzCash.MerchantID,
			IntegritySalt: cfg.JazzCash.IntegritySalt,
		}),
		strings.TrimSpace(cfg.JazzCash.IntegritySalt) != "",
		allowMock,
	)

	easyPaisaVerifier := gateway.SelectVerifier(
		gateway.GatewayNameEasyPaisa,
		gateway.NewEasyPaisaVerifier(gateway.EasyPaisaConfig{
			StoreID: cfg.EasyPaisa.StoreID,
			HashKey: cfg.EasyPaisa.HashKey,
		}),
		strings.TrimSpace(cfg.EasyPaisa.HashKey) != "",
		allowMock,
	)

	payFastVerifier := gateway.SelectVerifier(
		gateway.GatewayNamePayFast,
		gateway.NewPayFastVerifier(gateway.PayFastConfig{
			MerchantID:  cfg.PayFast.MerchantID,
			MerchantKey: cfg.PayFast.MerchantKey,
			Passphrase:  cfg.PayFast.Passphrase,
		}),
		strings.TrimSpace(cfg.PayFast.MerchantKey) != "",
		allowMock,
	)

	return gateway.NewRegistry(
		gateway.NewStripeGateway(stripeVerifier),
		gateway.NewJazzCashGateway(jazzCashVerifier),
		gateway.NewEasyPaisaGateway(easyPaisaVerifier),
		gateway.NewPayFastGateway(payFastVerifier),
	)
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
