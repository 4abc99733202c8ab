package server

import (
	"net/http"
	"time"

	"taskgrid/pkg/types"
	"taskgrid/worker-node/internal/executor"

	"github.com/gin-gonic/gin"
)

// NewRouter arma la superficie HTTP del worker: admisión de ejecuciones y un
// health check mínimo.
func NewRouter(exec *executor.Executor) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.POST("/execute", execute(exec))
	r.GET("/health", healthCheck(exec))

	return r
}

func execute(exec *executor.Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ExecutionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payload inválido", "details": err.Error()})
			return
		}

		ack, err := exec.Admit(req)
		if err != nil {
			// única causa: prioridad <= 0
			c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be greater than 0"})
			return
		}

		c.JSON(http.StatusOK, ack)
	}
}

func healthCheck(exec *executor.Executor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"worker_id": exec.ID(),
			"in_flight": exec.InFlight(),
			"timestamp": time.Now(),
		})
	}
}
