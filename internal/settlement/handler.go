package settlement

import (
	"errors"
	"net/http"
	"strconv"

	"fitpass/internal/api"
	"fitpass/internal/auth"
	"fitpass/internal/gym"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) UnsettledSummary(c *gin.Context) {
	summaries, err := h.service.UnsettledSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load unsettled summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gyms": summaries})
}

func (h *Handler) Create(c *gin.Context) {
	var req struct {
		GymID int `json:"gym_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	actorID, _ := auth.GetUserID(c)

	stl, err := h.service.Create(c.Request.Context(), req.GymID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, gym.ErrGymNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		case errors.Is(err, ErrNoUnsettledPayments):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "No unsettled payments for gym"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create settlement"})
		}
		return
	}

	c.JSON(http.StatusCreated, stl)
}

func (h *Handler) Process(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid settlement ID"})
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	actorID, _ := auth.GetUserID(c)

	stl, err := h.service.Process(c.Request.Context(), id, req.TransactionID, req.Notes, actorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSettlementNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Settlement not found"})
		case errors.Is(err, ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Settlement already processed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process settlement"})
		}
		return
	}

	c.JSON(http.StatusOK, stl)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid settlement ID"})
		return
	}

	stl, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Settlement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load settlement"})
		return
	}

	c.JSON(http.StatusOK, stl)
}

func (h *Handler) List(c *gin.Context) {
	settlements, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list settlements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}
