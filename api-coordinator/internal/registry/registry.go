package registry

import (
	"context"
	"fmt"
	"time"

	"taskgrid/pkg/styles"
	"taskgrid/pkg/types"

	"github.com/redis/go-redis/v9"
)

const (
	workerIndexKey  = "workers:index"
	workerKeyPrefix = "worker:"
	writeTimeout    = 2 * time.Second
	workerTTL       = 5 * time.Minute
)

// WorkerInfo es el snapshot de un worker según el registro.
type WorkerInfo struct {
	Node         types.WorkerNode `json:"node"`
	LastTaskID   string           `json:"last_task_id"`
	LastDispatch string           `json:"last_dispatch"`
	Accepted     string           `json:"accepted_count"`
}

// Registry refleja en Redis los resultados de dispatch por worker. Es
// puramente observacional: si Redis está caído el dispatch sigue igual.
type Registry struct {
	client *redis.Client
}

func New(client *redis.Client) *Registry {
	return &Registry{client: client}
}

// RecordDispatch registra que un worker aceptó una tarea. Errores se loguean
// y se descartan.
func (r *Registry) RecordDispatch(worker types.WorkerNode, taskID int64) {
	if r == nil || r.client == nil || worker == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	key := workerKeyPrefix + string(worker)
	fields := map[string]interface{}{
		"last_task_id":  taskID,
		"last_dispatch": time.Now().UnixMilli(),
	}

	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		styles.PrintFS("error", "[REGISTRY] Error registrando dispatch en Redis:\n%v", err)
		return
	}
	if err := r.client.HIncrBy(ctx, key, "accepted_count", 1).Err(); err != nil {
		styles.PrintFS("error", "[REGISTRY] Error incrementando contador en Redis:\n%v", err)
		return
	}
	if err := r.client.SAdd(ctx, workerIndexKey, string(worker)).Err(); err != nil {
		styles.PrintFS("error", "[REGISTRY] Error indexando worker en Redis:\n%v", err)
		return
	}
	if err := r.client.Expire(ctx, key, workerTTL).Err(); err != nil {
		styles.PrintFS("error", "[REGISTRY] Error configurando TTL en Redis:\n%v", err)
	}
}

// Snapshot devuelve el estado registrado de todos los workers indexados.
func (r *Registry) Snapshot(ctx context.Context) ([]WorkerInfo, error) {
	if r == nil || r.client == nil {
		return nil, nil
	}

	members, err := r.client.SMembers(ctx, workerIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("registry: leyendo índice: %w", err)
	}

	out := make([]WorkerInfo, 0, len(members))
	for _, m := range members {
		fields, err := r.client.HGetAll(ctx, workerKeyPrefix+m).Result()
		if err != nil {
			return nil, fmt.Errorf("registry: leyendo worker %s: %w", m, err)
		}
		out = append(out, WorkerInfo{
			Node:         types.WorkerNode(m),
			LastTaskID:   fields["last_task_id"],
			LastDispatch: fields["last_dispatch"],
			Accepted:     fields["accepted_count"],
		})
	}
	return out, nil
}
