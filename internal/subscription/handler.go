package subscription

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/gym"
	"fitpass/internal/payment"
	"fitpass/internal/plan"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	PlanID int `json:"plan_id" binding:"required"`
	GymID  int `json:"gym_id" binding:"required"`
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
	SubscriptionID   int    `json:"subscription_id"`
}

type consoleCreateRequest struct {
	UserID int `json:"user_id" binding:"required"`
	PlanID int `json:"plan_id" binding:"required"`
	GymID  int `json:"gym_id" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	sub, order, err := h.service.Create(c.Request.Context(), userID, req.PlanID, req.GymID, SourceApp)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subscription": sub,
		"order":        order,
	})
}

func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}
	if req.GatewayOrderID == "" && req.GatewayPaymentID == "" && req.SubscriptionID == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gateway_order_id, gateway_payment_id or subscription_id is required"})
		return
	}

	sub, err := h.service.ActivateOnPayment(
		c.Request.Context(),
		req.GatewayOrderID,
		req.GatewayPaymentID,
		req.GatewaySignature,
		req.SubscriptionID,
	)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// Webhook consumes gateway callbacks. The raw body is needed for the HMAC
// check, so it is read before any JSON binding.
func (h *Handler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing webhook signature"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), rawBody, signature); err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid signature"})
			return
		}
		if errors.Is(err, payment.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}

func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subs, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid subscription ID"})
		return
	}

	sub, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *Handler) ManualActivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid subscription ID"})
		return
	}

	actorID, _ := auth.GetUserID(c)

	sub, err := h.service.ManualActivate(c.Request.Context(), id, actorID)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (h *Handler) CreateConsole(c *gin.Context) {
	var req consoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	actorID, _ := auth.GetUserID(c)

	sub, err := h.service.CreateConsole(c.Request.Context(), req.UserID, req.PlanID, req.GymID, actorID)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

func (h *Handler) writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plan.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
	case errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
	case errors.Is(err, ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
	case errors.Is(err, payment.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
	case errors.Is(err, ErrAlreadyActive):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "An active subscription already exists for this gym"})
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid signature"})
	case errors.Is(err, ErrPaymentService):
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Payment service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Operation failed"})
	}
}
