package gym

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

func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	g, err := h.repo.CreateGym(c.Request.Context(), req.Name, req.Location, req.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetGym(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid gym ID"})
		return
	}

	g, err := h.repo.GetGymByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load gym"})
		return
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.repo.GetAllGyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list gyms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gyms": gyms})
}
