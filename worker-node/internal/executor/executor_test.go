package executor

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"taskgrid/pkg/types"
)

func testExecutor(seed int64) *Executor {
	return &Executor{
		id:       "test-worker",
		baseUnit: time.Millisecond, // acelera las simulaciones en tests
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func TestAdmitAcceptsImmediately(t *testing.T) {
	e := testExecutor(1)

	start := time.Now()
	ack, err := e.Admit(types.ExecutionRequest{TaskID: 1, Name: "demo", Priority: 2.0})
	if err != nil {
		t.Fatalf("admisión falló: %v", err)
	}
	// la admisión responde antes de que la ejecución termine
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("la admisión bloqueó %s", elapsed)
	}

	if ack.Message != "Task accepted for execution" {
		t.Errorf("mensaje inesperado: %q", ack.Message)
	}
	if ack.WorkerID != "test-worker" {
		t.Errorf("worker id inesperado: %q", ack.WorkerID)
	}
}

func TestAdmitRejectsNonPositivePriority(t *testing.T) {
	e := testExecutor(1)

	for _, p := range []float64{0, -1, -0.5} {
		_, err := e.Admit(types.ExecutionRequest{TaskID: 1, Name: "demo", Priority: p})
		if !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("priority %v: esperaba ErrInvalidPriority, obtenido %v", p, err)
		}
	}
	if got := e.InFlight(); got != 0 {
		t.Errorf("una request rechazada no debe agendar ejecución, in-flight = %d", got)
	}
}

func TestExecutionDurationDecreasesWithPriority(t *testing.T) {
	// misma semilla para cada prioridad: el factor uniforme es idéntico y la
	// duración debe ser estrictamente decreciente al subir la prioridad
	priorities := []float64{0.5, 1, 2, 4, 8}
	durations := make([]time.Duration, len(priorities))
	for i, p := range priorities {
		e := testExecutor(99)
		durations[i] = e.executionDuration(p)
	}

	for i := 1; i < len(durations); i++ {
		if durations[i] >= durations[i-1] {
			t.Errorf("duración no decrece: priority %v -> %s, priority %v -> %s",
				priorities[i-1], durations[i-1], priorities[i], durations[i])
		}
	}
}

func TestExecutionDurationRangeForPriorityTwo(t *testing.T) {
	// uniform(1,10) / 2 => [0.5, 5.0] unidades base
	e := testExecutor(7)
	min := time.Duration(0.5 * float64(e.baseUnit))
	max := time.Duration(5.0 * float64(e.baseUnit))

	for i := 0; i < 1000; i++ {
		d := e.executionDuration(2.0)
		if d < min || d > max {
			t.Fatalf("duración %s fuera de [%s, %s]", d, min, max)
		}
	}
}

func TestConcurrentExecutionsDoNotBlockEachOther(t *testing.T) {
	e := testExecutor(3)

	for i := 0; i < 20; i++ {
		if _, err := e.Admit(types.ExecutionRequest{TaskID: int64(i), Name: "demo", Priority: 0.01}); err != nil {
			t.Fatalf("admisión %d falló: %v", i, err)
		}
	}

	// todas quedaron en vuelo a la vez: ninguna admisión esperó a otra
	if got := e.InFlight(); got != 20 {
		t.Errorf("esperaba 20 ejecuciones en vuelo, obtenido %d", got)
	}
}
