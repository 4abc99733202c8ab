package tasks

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskgrid/api-coordinator/internal/dispatcher"

	"github.com/gin-gonic/gin"
)

// Handler expone los endpoints HTTP de tareas. Todas las rutas asumen que el
// middleware de auth ya dejó user_id en el contexto.
type Handler struct {
	svc     Service
	timeout time.Duration
}

func NewHandler(svc Service) *Handler {
	return &Handler{
		svc:     svc,
		timeout: 15 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id/complete", h.complete)
	rg.POST("/:id/dispatch", h.redispatch)
}

type createRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload inválido", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	t, err := h.svc.Create(ctx, c.GetString("user_id"), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo crear la tarea"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task_id": t.ID, "priority": t.Priority})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	t, err := h.svc.Get(ctx, c.GetString("user_id"), id)
	if err != nil {
		if err == ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer la tarea"})
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *Handler) complete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if _, err := h.svc.Complete(ctx, c.GetString("user_id"), id); err != nil {
		if err == ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo completar la tarea"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task completed successfully"})
}

func (h *Handler) redispatch(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	// el timeout del fan-out lo gobierna el dispatcher, acá solo acotamos el request
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	worker, err := h.svc.Redispatch(ctx, c.GetString("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, ErrTaskAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "la tarea ya está completada"})
		case errors.Is(err, dispatcher.ErrNoAvailableWorkers):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No available workers"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo despachar la tarea"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return 0, false
	}
	return id, true
}
