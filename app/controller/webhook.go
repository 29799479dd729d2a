package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/entity"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/factory"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/gateway"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/service"
	"github.com/tripverse-solutions/ms-go-booking-webhooks/app/types"
)

// WebhookController wires one HTTP handler per provider. Each handler owns
// its provider's exact acknowledgment contract; everything between raw
// body and ack is the shared verify→normalize→resolve→reconcile pipeline.
type WebhookController struct {
	registry *gateway.Registry
	recon    *service.ReconciliationService
	logger   logrus.FieldLogger
}

func NewWebhookController(registry *gateway.Registry, recon *service.ReconciliationService) *WebhookController {
	return &WebhookController{
		registry: registry,
		recon:    recon,
		logger:   factory.NewModuleLogger("webhooks-controller"),
	}
}

func (c *WebhookController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// HandleStripe verifies against the raw, unparsed request body; the
// Stripe-Signature header signs exactly those bytes.
func (c *WebhookController) HandleStripe(ctx echo.Context) error {
	payload, err := readRawBody(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "unreadable request body"})
	}
	signature := strings.TrimSpace(ctx.Request().Header.Get("Stripe-Signature"))

	gw, err := c.registry.Get(gateway.GatewayNameStripe)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "internal server error"})
	}

	notification, err := gw.ParseNotification(ctx.Request().Context(), payload, signature)
	if err != nil {
		c.rejectDelivery(ctx, gateway.GatewayNameStripe, payload, signature, err)
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "webhook verification failed"})
	}

	if _, err := c.recon.Reconcile(ctx.Request().Context(), gateway.GatewayNameStripe, notification); err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, &types.StripeAckResponse{Received: true})
}

func (c *WebhookController) HandleJazzCash(ctx echo.Context) error {
	payload, err := readRawBody(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, &types.JazzCashAckResponse{Success: false, Message: "unreadable request body"})
	}

	gw, err := c.registry.Get(gateway.GatewayNameJazzCash)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.JazzCashAckResponse{Success: false, Message: "internal server error"})
	}

	notification, err := gw.ParseNotification(ctx.Request().Context(), payload, "")
	if err != nil {
		c.rejectDelivery(ctx, gateway.GatewayNameJazzCash, payload, "", err)
		return ctx.JSON(http.StatusBadRequest, &types.JazzCashAckResponse{Success: false, Message: "invalid secure hash"})
	}

	result, err := c.recon.Reconcile(ctx.Request().Context(), gateway.GatewayNameJazzCash, notification)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.JazzCashAckResponse{
			Success:       false,
			Message:       "processing failed",
			TransactionID: notification.TransactionRef,
		})
	}

	return ctx.JSON(http.StatusOK, &types.JazzCashAckResponse{
		Success:       true,
		Message:       dispositionMessage(result.Disposition),
		TransactionID: result.TransactionRef,
		Status:        string(result.Outcome),
	})
}

// HandleEasyPaisa acknowledges with 200 even on internal errors; the
// provider retries aggressively on anything else. Signature failures are
// the one documented 400.
func (c *WebhookController) HandleEasyPaisa(ctx echo.Context) error {
	payload, err := readRawBody(ctx)
	if err != nil {
		return ctx.JSON(http.StatusOK, &types.EasyPaisaAckResponse{Success: false, Message: "unreadable request body"})
	}

	gw, err := c.registry.Get(gateway.GatewayNameEasyPaisa)
	if err != nil {
		return ctx.JSON(http.StatusOK, &types.EasyPaisaAckResponse{Success: false, Message: "internal server error"})
	}

	notification, err := gw.ParseNotification(ctx.Request().Context(), payload, "")
	if err != nil {
		c.rejectDelivery(ctx, gateway.GatewayNameEasyPaisa, payload, "", err)
		if isVerificationFailure(err) {
			return ctx.JSON(http.StatusBadRequest, &types.EasyPaisaAckResponse{Success: false, Message: "invalid signature"})
		}
		return ctx.JSON(http.StatusOK, &types.EasyPaisaAckResponse{Success: false, Message: "malformed payload"})
	}

	result, err := c.recon.Reconcile(ctx.Request().Context(), gateway.GatewayNameEasyPaisa, notification)
	if err != nil {
		// Errored audit row is already persisted; the forced 200 is the
		// provider's contract, not a claim of success.
		return ctx.JSON(http.StatusOK, &types.EasyPaisaAckResponse{
			Success:       false,
			Message:       "processing failed",
			TransactionID: notification.TransactionRef,
		})
	}

	return ctx.JSON(http.StatusOK, &types.EasyPaisaAckResponse{
		Success:       true,
		Message:       dispositionMessage(result.Disposition),
		TransactionID: result.TransactionRef,
	})
}

// HandlePayFast answers in plain text: the provider requires a verbatim
// "OK" body and treats anything else as a delivery failure.
func (c *WebhookController) HandlePayFast(ctx echo.Context) error {
	payload, err := readRawBody(ctx)
	if err != nil {
		return ctx.String(http.StatusBadRequest, "ERROR")
	}

	gw, err := c.registry.Get(gateway.GatewayNamePayFast)
	if err != nil {
		return ctx.String(http.StatusInternalServerError, "ERROR")
	}

	notification, err := gw.ParseNotification(ctx.Request().Context(), payload, "")
	if err != nil {
		c.rejectDelivery(ctx, gateway.GatewayNamePayFast, payload, "", err)
		return ctx.String(http.StatusBadRequest, "ERROR")
	}

	if _, err := c.recon.Reconcile(ctx.Request().Context(), gateway.GatewayNamePayFast, notification); err != nil {
		return ctx.String(http.StatusInternalServerError, "ERROR")
	}

	return ctx.String(http.StatusOK, "OK")
}

func (c *WebhookController) rejectDelivery(ctx echo.Context, gatewayName string, payload []byte, signature string, cause error) {
	factory.LoggerWithContext(c.logger, ctx).WithError(cause).
		WithField("gateway", gatewayName).
		Warn("Rejected webhook delivery")
	c.recon.RecordRejected(ctx.Request().Context(), gatewayName, payload, signature, cause.Error())
}

func isVerificationFailure(err error) bool {
	return errors.Is(err, gateway.ErrSignatureMismatch) || errors.Is(err, gateway.ErrCredentialsMissing)
}

func dispositionMessage(disposition string) string {
	switch disposition {
	case entity.EventDispositionProcessed:
		return "Webhook processed"
	case entity.EventDispositionOrphaned:
		return "No matching booking, webhook acknowledged"
	case entity.EventDispositionStale:
		return "Stale delivery acknowledged"
	default:
		return "Webhook acknowledged"
	}
}

func readRawBody(ctx echo.Context) ([]byte, error) {
	defer ctx.Request().Body.Close()
	return io.ReadAll(ctx.Request().Body)
}
