package main

import (
	"context"

	httpserver "taskgrid/api-coordinator/internal/server/http"
)

func main() {
	ctx := context.Background()
	httpserver.NewRouter(ctx)
}
