package main

import (
	"os"

	"taskgrid/pkg/styles"
	"taskgrid/worker-node/internal/executor"
	"taskgrid/worker-node/internal/server"

	"github.com/google/uuid"
)

func main() {
	workerID := uuid.New().String()
	exec := executor.New(workerID)

	addr := os.Getenv("WORKER_ADDR")
	if addr == "" {
		addr = ":8001"
	}

	styles.PrintFS("info", "[WORKER] Worker %s escuchando en %s", workerID, addr)

	r := server.NewRouter(exec)
	if err := r.Run(addr); err != nil {
		styles.PrintFS("error", "[WORKER] Error: %v", err)
		os.Exit(1)
	}
}
