package handler

import (
	"errors"
	"net/http"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	service "rental-billing-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BillingHandler struct {
	service *service.Service
	log     *zap.Logger
}

func NewBillingHandler(s *service.Service, log *zap.Logger) *BillingHandler {
	return &BillingHandler{service: s, log: log}
}

// actorID identifies the staff member; authentication itself is handled
// upstream of this service.
func actorID(c *gin.Context) string {
	if id := c.GetHeader("X-Actor-ID"); id != "" {
		return id
	}
	return "staff"
}

func (h *BillingHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr   *apperrors.ValidationError
		authErr         *apperrors.AuthenticationError
		notFoundErr     *apperrors.NotFoundError
		invalidStateErr *apperrors.InvalidStateError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusConflict, gin.H{"error": invalidStateErr.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *BillingHandler) RecordManualPayment(c *gin.Context) {
	invoiceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Method        string     `json:"method"`
		Amount        int64      `json:"amount"`
		PaidAt        *time.Time `json:"paid_at"`
		AttachmentRef *string    `json:"attachment_ref"`
		Note          string     `json:"note"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	payment, invoice, err := h.service.RecordManualPayment(c.Request.Context(), service.ManualPaymentInput{
		InvoiceID:     invoiceID,
		Method:        models.PaymentMethod(payload.Method),
		Amount:        payload.Amount,
		PaidAt:        payload.PaidAt,
		AttachmentRef: payload.AttachmentRef,
		Note:          payload.Note,
		ActorID:       actorID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment, "invoice": invoice})
}

func (h *BillingHandler) CreateGatewayPayment(c *gin.Context) {
	invoiceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Provider string `json:"provider"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	payment, err := h.service.CreateGatewayPayment(c.Request.Context(), invoiceID, payload.Provider)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

func (h *BillingHandler) AcknowledgePayment(c *gin.Context) {
	paymentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Approve bool       `json:"approve"`
		Reason  string     `json:"reason"`
		PaidAt  *time.Time `json:"paid_at"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	payment, invoice, err := h.service.AcknowledgePayment(
		c.Request.Context(), paymentID, payload.Approve, actorID(c), payload.Reason, payload.PaidAt,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment, "invoice": invoice})
}

func (h *BillingHandler) VoidPayment(c *gin.Context) {
	paymentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	payment, err := h.service.VoidPayment(c.Request.Context(), paymentID, actorID(c), payload.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	invoiceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	invoice, err := h.service.CancelInvoice(c.Request.Context(), invoiceID, actorID(c), payload.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (h *BillingHandler) ExtendDueDate(c *gin.Context) {
	invoiceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		DueDate time.Time `json:"due_date"`
		Reason  string    `json:"reason"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	invoice, err := h.service.ExtendDueDate(c.Request.Context(), invoiceID, actorID(c), payload.DueDate, payload.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	contractID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var payload struct {
		PeriodStart string `json:"period_start"` // "2006-01-02"
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	periodStart, err := time.Parse("2006-01-02", payload.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start, expected yyyy-mm-dd"})
		return
	}

	invoice, err := h.service.GenerateInvoice(c.Request.Context(), contractID, periodStart)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

func (h *BillingHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetInvoiceDetail(c.Request.Context(), invoiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetPublicInvoice is the tenant-facing lookup by invoice number,
// registered only when the public site is enabled.
func (h *BillingHandler) GetPublicInvoice(c *gin.Context) {
	number := c.Param("number")
	detail, err := h.service.GetInvoiceDetailByNumber(c.Request.Context(), number)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
