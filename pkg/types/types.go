package types

// TaskStatus representa el estado del ciclo de vida de una tarea.
// Solo avanza: pending -> dispatched -> completed.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusDispatched TaskStatus = "dispatched"
	StatusCompleted  TaskStatus = "completed"
)

// WorkerNode es la dirección base HTTP de un executor (ej. "http://worker1:8001").
type WorkerNode string

// ---- PAYLOADS ----

// ExecutionRequest es el payload que el coordinador manda a cada worker.
// Inmutable una vez construido.
type ExecutionRequest struct {
	TaskID   int64   `json:"task_id"`
	Name     string  `json:"name"`
	Priority float64 `json:"priority"`
}

// ExecutionAck es la respuesta sincrónica del worker al admitir una tarea.
type ExecutionAck struct {
	Message  string `json:"message"`
	WorkerID string `json:"worker_id,omitempty"`
}

// ---- HTTP ----

type UserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}
