package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/gateway"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationApplier is the slice of the reconciliation service the
// webhook ingress needs.
type NotificationApplier interface {
	ApplyGatewayNotification(ctx context.Context, n *gateway.Notification) error
}

type WebhookHandler struct {
	service NotificationApplier
	log     *zap.Logger
}

func NewWebhookHandler(s NotificationApplier, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: s, log: log}
}

// HandleNotification receives a gateway status notification. The only
// non-2xx outcomes are malformed payloads, signature mismatches, and
// unknown orders; everything else acknowledges with 200 so the gateway
// stops retrying.
func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	var n gateway.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		h.log.Warn("malformed notification payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	n.Raw = body

	err = h.service.ApplyGatewayNotification(c.Request.Context(), &n)

	var (
		validationErr *apperrors.ValidationError
		authErr       *apperrors.AuthenticationError
		notFoundErr   *apperrors.NotFoundError
	)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "OK"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		// The service only surfaces the three cases above; anything
		// else is acknowledged.
		c.JSON(http.StatusOK, gin.H{"message": "OK"})
	}
}
