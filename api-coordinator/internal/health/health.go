package health

import (
	"context"
	"net/http"
	"time"

	"taskgrid/api-coordinator/internal/plattform"
	"taskgrid/pkg/types"

	"github.com/gin-gonic/gin"
)

type Status struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

type Service interface {
	Check(ctx context.Context) Status
}

type healthService struct {
	mongoClient *plattform.MongoService
	pool        []types.WorkerNode
}

func NewService(mongoClient *plattform.MongoService, pool []types.WorkerNode) Service {
	return &healthService{
		mongoClient: mongoClient,
		pool:        pool,
	}
}

func (s *healthService) Check(ctx context.Context) Status {
	services := make(map[string]interface{})
	overallStatus := "ok"

	// 1. MongoDB Check
	mongoStatus := "ok"
	if err := s.mongoClient.Ping(ctx); err != nil {
		mongoStatus = "down"
		overallStatus = "degraded"
	}
	services["mongodb"] = map[string]string{
		"status": mongoStatus,
	}

	// 2. Worker pool: el pool es estático, así que reportamos su tamaño.
	// Un pool vacío significa que ningún dispatch puede tener éxito.
	poolStatus := "ok"
	if len(s.pool) == 0 {
		poolStatus = "empty"
		overallStatus = "degraded"
	}
	services["worker_pool"] = map[string]interface{}{
		"status":       poolStatus,
		"worker_count": len(s.pool),
	}

	return Status{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
	}
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/health", h.HealthCheck)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := h.svc.Check(c.Request.Context())
	httpStatus := http.StatusOK
	if status.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, status)
}
