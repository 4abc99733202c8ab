package executor

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"taskgrid/pkg/styles"
	"taskgrid/pkg/types"
)

// La duración simulada es uniform(minUnits, maxUnits) * (1/priority), en
// unidades de baseUnit. Más prioridad -> ejecución más corta.
const (
	minUnits = 1.0
	maxUnits = 10.0
)

// ErrInvalidPriority se devuelve en la admisión: con prioridad <= 0 la
// duración sería indefinida, así que se rechaza en la frontera.
var ErrInvalidPriority = errors.New("executor: priority must be > 0")

// Executor admite requests de ejecución y corre cada una como simulación en
// background. La admisión responde antes de que empiece la ejecución y nunca
// se bloquea por ejecuciones en vuelo.
type Executor struct {
	id       string
	baseUnit time.Duration
	rng      *rand.Rand
	mu       sync.Mutex // protege rng
	inflight atomic.Int64
}

func New(id string) *Executor {
	return &Executor{
		id:       id,
		baseUnit: time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Executor) ID() string { return e.id }

// InFlight devuelve cuántas ejecuciones simuladas siguen corriendo.
func (e *Executor) InFlight() int64 { return e.inflight.Load() }

// Admit acepta la request de inmediato (no hay backpressure: el único camino
// de rechazo es una prioridad inválida) y agenda la ejecución suelta.
func (e *Executor) Admit(req types.ExecutionRequest) (types.ExecutionAck, error) {
	if req.Priority <= 0 {
		return types.ExecutionAck{}, ErrInvalidPriority
	}

	d := e.executionDuration(req.Priority)
	e.inflight.Add(1)
	go e.run(req, d)

	return types.ExecutionAck{
		Message:  "Task accepted for execution",
		WorkerID: e.id,
	}, nil
}

func (e *Executor) executionDuration(priority float64) time.Duration {
	e.mu.Lock()
	u := minUnits + e.rng.Float64()*(maxUnits-minUnits)
	e.mu.Unlock()
	return time.Duration((u / priority) * float64(e.baseUnit))
}

// run es un sink deliberado: duerme la duración simulada, loguea el final y
// no reporta nada al coordinador. El completado real de la tarea lo decide el
// cliente vía la API, no esta simulación.
func (e *Executor) run(req types.ExecutionRequest, d time.Duration) {
	defer e.inflight.Add(-1)
	time.Sleep(d)
	styles.PrintFS("success", "[WORKER] Task %d: %s completada en %.2f segundos", req.TaskID, req.Name, d.Seconds())
}
