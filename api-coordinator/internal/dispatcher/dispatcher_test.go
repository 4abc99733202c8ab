package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskgrid/pkg/types"
)

func okWorker(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecutionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("payload inválido en el worker: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(types.ExecutionAck{Message: "Task accepted for execution"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func slowOKWorker(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// hangingWorker nunca responde; se desbloquea cuando el cliente cancela.
func hangingWorker(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hay que drenar el body: con body sin leer el servidor no detecta la
		// desconexión del cliente y r.Context() nunca se cancela.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingWorker(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() types.ExecutionRequest {
	return types.ExecutionRequest{TaskID: 42, Name: "informe", Priority: 2.0}
}

func TestDispatchTimeoutThenPoolOrder(t *testing.T) {
	// Escenario: W1 se cuelga (timeout), W2 y W3 aceptan -> gana W2,
	// el primer éxito en orden del pool.
	w1 := hangingWorker(t)
	w2 := okWorker(t)
	w3 := okWorker(t)

	pool := []types.WorkerNode{
		types.WorkerNode(w1.URL),
		types.WorkerNode(w2.URL),
		types.WorkerNode(w3.URL),
	}
	d := New(nil, pool, 300*time.Millisecond)

	worker, err := d.Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("dispatch falló: %v", err)
	}
	if worker != types.WorkerNode(w2.URL) {
		t.Errorf("esperaba %s, obtenido %s", w2.URL, worker)
	}
}

func TestDispatchPoolOrderBeatsArrivalOrder(t *testing.T) {
	// W1 acepta tarde, W2 acepta al instante. Como se espera a que TODOS
	// terminen, igual gana W1 por posición en el pool.
	w1 := slowOKWorker(t, 150*time.Millisecond)
	w2 := okWorker(t)

	pool := []types.WorkerNode{
		types.WorkerNode(w1.URL),
		types.WorkerNode(w2.URL),
	}
	d := New(nil, pool, 2*time.Second)

	worker, err := d.Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("dispatch falló: %v", err)
	}
	if worker != types.WorkerNode(w1.URL) {
		t.Errorf("esperaba %s (primero del pool), obtenido %s", w1.URL, worker)
	}
}

func TestDispatchAllWorkersFail(t *testing.T) {
	w1 := failingWorker(t, http.StatusInternalServerError)
	w2 := failingWorker(t, http.StatusNotFound)

	// worker inalcanzable: el server ya está cerrado
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	pool := []types.WorkerNode{
		types.WorkerNode(w1.URL),
		types.WorkerNode(w2.URL),
		types.WorkerNode(deadURL),
	}
	d := New(nil, pool, time.Second)

	_, err := d.Dispatch(context.Background(), testRequest())
	if !errors.Is(err, ErrNoAvailableWorkers) {
		t.Fatalf("esperaba ErrNoAvailableWorkers, obtenido %v", err)
	}
}

func TestDispatchAllWorkersTimeout(t *testing.T) {
	w1 := hangingWorker(t)
	w2 := hangingWorker(t)

	pool := []types.WorkerNode{
		types.WorkerNode(w1.URL),
		types.WorkerNode(w2.URL),
	}
	d := New(nil, pool, 200*time.Millisecond)

	start := time.Now()
	_, err := d.Dispatch(context.Background(), testRequest())
	if !errors.Is(err, ErrNoAvailableWorkers) {
		t.Fatalf("esperaba ErrNoAvailableWorkers, obtenido %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("el timeout global no acotó el fan-out: %s", elapsed)
	}
}

func TestDispatchEmptyPool(t *testing.T) {
	d := New(nil, nil, time.Second)

	_, err := d.Dispatch(context.Background(), testRequest())
	if !errors.Is(err, ErrNoAvailableWorkers) {
		t.Fatalf("esperaba ErrNoAvailableWorkers con pool vacío, obtenido %v", err)
	}
}

func TestDispatchSingleWorker(t *testing.T) {
	w1 := okWorker(t)

	d := New(nil, []types.WorkerNode{types.WorkerNode(w1.URL)}, time.Second)

	worker, err := d.Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("dispatch falló: %v", err)
	}
	if worker != types.WorkerNode(w1.URL) {
		t.Errorf("esperaba %s, obtenido %s", w1.URL, worker)
	}
}
