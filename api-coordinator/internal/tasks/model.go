package tasks

import (
	"context"
	"errors"
	"time"

	"taskgrid/pkg/types"
)

// Task representa el registro persistido de una tarea. CompletedAt existe si
// y solo si el estado es completed.
type Task struct {
	ID          int64            `bson:"_id" json:"task_id"`
	Name        string           `bson:"name" json:"name"`
	Description string           `bson:"description" json:"description"`
	Status      types.TaskStatus `bson:"status" json:"status"`
	Priority    float64          `bson:"priority" json:"priority"`
	UserID      string           `bson:"userId" json:"-"`
	CreatedAt   time.Time        `bson:"createdAt" json:"created_at"`
	CompletedAt *time.Time       `bson:"completedAt,omitempty" json:"completed_at,omitempty"`
}

// Errores de dominio de tasks.
var (
	// ErrTaskNotFound cubre también el caso de owner distinto: para el caller
	// una tarea ajena es indistinguible de una inexistente.
	ErrTaskNotFound         = errors.New("tasks: task not found")
	ErrTaskAlreadyCompleted = errors.New("tasks: task already completed")
)

// Repository define las operaciones contra la persistencia. Las transiciones
// de estado son read-modify-write atómicas sobre un solo id.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, userID string, id int64) (*Task, error)
	// MarkDispatched avanza pending -> dispatched. Si la tarea ya no está en
	// pending no hace nada: el estado nunca retrocede.
	MarkDispatched(ctx context.Context, id int64) error
	// MarkCompleted avanza a completed y fija completedAt una sola vez.
	// Llamadas repetidas son idempotentes y conservan el primer timestamp.
	MarkCompleted(ctx context.Context, userID string, id int64, at time.Time) (*Task, error)
}

// Dispatcher es lo que el servicio necesita del coordinador de dispatch.
type Dispatcher interface {
	Dispatch(ctx context.Context, req types.ExecutionRequest) (types.WorkerNode, error)
}

// Service define la lógica de negocio expuesta a los handlers.
type Service interface {
	Create(ctx context.Context, userID, name, description string) (*Task, error)
	Get(ctx context.Context, userID string, id int64) (*Task, error)
	Complete(ctx context.Context, userID string, id int64) (*Task, error)
	Redispatch(ctx context.Context, userID string, id int64) (types.WorkerNode, error)
}
