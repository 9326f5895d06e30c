package plan

import (
	"errors"
	"net/http"
	"strconv"

	"fitpass/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type createPlanRequest struct {
	GymID         int          `json:"gym_id" binding:"required"`
	Name          string       `json:"name" binding:"required"`
	PriceCents    int64        `json:"price_cents" binding:"required,min=0"`
	DurationValue int          `json:"duration_value" binding:"required,min=1"`
	DurationUnit  DurationUnit `json:"duration_unit" binding:"required,oneof=day week month year"`
}

type updatePlanRequest struct {
	PriceCents int64 `json:"price_cents" binding:"min=0"`
	IsActive   *bool `json:"is_active" binding:"required"`
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	p, err := h.repo.Create(c.Request.Context(), req.GymID, req.Name, req.PriceCents, req.DurationValue, req.DurationUnit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListByGym(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	plans, err := h.repo.ListByGym(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *Handler) UpdatePlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	p, err := h.repo.Update(c.Request.Context(), id, req.PriceCents, *req.IsActive)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update plan"})
		return
	}

	c.JSON(http.StatusOK, p)
}
