package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"taskgrid/pkg/styles"
	"taskgrid/pkg/types"
)

// ErrNoAvailableWorkers indica que ningún worker del pool aceptó la tarea.
// Se mapea a 503 en la capa HTTP.
var ErrNoAvailableWorkers = errors.New("dispatcher: no available workers")

const DefaultTimeout = 10 * time.Second

// Dispatcher hace fan-out de una ExecutionRequest a todos los workers del
// pool y resuelve la carrera al primer éxito. El pool es una lista fija y
// ordenada; no hay membresía dinámica.
type Dispatcher struct {
	client  *http.Client
	pool    []types.WorkerNode
	timeout time.Duration
}

func New(client *http.Client, pool []types.WorkerNode, timeout time.Duration) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		client:  client,
		pool:    pool,
		timeout: timeout,
	}
}

// Pool devuelve una copia de la lista de workers configurada.
func (d *Dispatcher) Pool() []types.WorkerNode {
	out := make([]types.WorkerNode, len(d.pool))
	copy(out, d.pool)
	return out
}

// Dispatch manda la request a todos los workers en paralelo, espera a que
// TODAS las llamadas terminen (éxito, error o timeout) y devuelve el primer
// worker que aceptó, en el orden del pool. Los fallos individuales se
// absorben aquí; solo el resultado agregado cruza la frontera.
func (d *Dispatcher) Dispatch(ctx context.Context, req types.ExecutionRequest) (types.WorkerNode, error) {
	if len(d.pool) == 0 {
		return "", ErrNoAvailableWorkers
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	accepted := make([]bool, len(d.pool))
	var wg sync.WaitGroup
	wg.Add(len(d.pool))

	for i, worker := range d.pool {
		go func(idx int, w types.WorkerNode) {
			defer wg.Done()
			if err := d.callWorker(ctx, w, req); err != nil {
				styles.PrintFS("warn", "[DISPATCH] Worker %s falló para task %d: %v", w, req.TaskID, err)
				return
			}
			accepted[idx] = true
		}(i, worker)
	}
	wg.Wait()

	// Desempate determinista: gana la posición en el pool, no el orden de llegada.
	for i, ok := range accepted {
		if ok {
			styles.PrintFS("success", "[DISPATCH] Task %d aceptada por %s", req.TaskID, d.pool[i])
			return d.pool[i], nil
		}
	}
	return "", ErrNoAvailableWorkers
}

func (d *Dispatcher) callWorker(ctx context.Context, worker types.WorkerNode, req types.ExecutionRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, string(worker)+"/execute", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
