package tasks

import (
	"context"
	"hash/fnv"
	"time"

	"taskgrid/api-coordinator/internal/priority"
	"taskgrid/api-coordinator/internal/registry"
	"taskgrid/pkg/styles"
	"taskgrid/pkg/types"
)

type service struct {
	repo      Repository
	predictor priority.Predictor
	dispatch  Dispatcher
	registry  *registry.Registry
	now       func() time.Time
}

// NewService construye el servicio de tareas. registry puede ser nil si no
// hay Redis disponible.
func NewService(repo Repository, predictor priority.Predictor, dispatch Dispatcher, reg *registry.Registry) Service {
	return &service{
		repo:      repo,
		predictor: predictor,
		dispatch:  dispatch,
		registry:  reg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persiste la tarea en pending y lanza el dispatch en background, como
// unidad de trabajo suelta: su resultado se observa por el estado de la tarea,
// no por la respuesta de creación.
func (s *service) Create(ctx context.Context, userID, name, description string) (*Task, error) {
	score := s.predictor.Score(priority.Features{
		NameLength:        len(name),
		DescriptionLength: len(description),
		OwnerSignal:       ownerSignal(userID),
	})

	t := &Task{
		Name:        name,
		Description: description,
		Status:      types.StatusPending,
		Priority:    score,
		UserID:      userID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	go s.dispatchTask(*t)

	return t, nil
}

// dispatchTask corre fuera del request que creó la tarea, con su propio
// contexto. El timeout global lo aplica el dispatcher.
func (s *service) dispatchTask(t Task) {
	worker, err := s.dispatch.Dispatch(context.Background(), executionRequest(t))
	if err != nil {
		styles.PrintFS("warn", "[TASKS] Dispatch de task %d sin workers disponibles: %v", t.ID, err)
		return
	}

	s.registry.RecordDispatch(worker, t.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.MarkDispatched(ctx, t.ID); err != nil {
		styles.PrintFS("error", "[TASKS] Error marcando task %d como dispatched: %v", t.ID, err)
	}
}

func (s *service) Get(ctx context.Context, userID string, id int64) (*Task, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *service) Complete(ctx context.Context, userID string, id int64) (*Task, error) {
	return s.repo.MarkCompleted(ctx, userID, id, s.now())
}

// Redispatch reintenta el dispatch de forma sincrónica; es la palanca del
// caller cuando la creación quedó en pending por falta de workers.
func (s *service) Redispatch(ctx context.Context, userID string, id int64) (types.WorkerNode, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if t.Status == types.StatusCompleted {
		return "", ErrTaskAlreadyCompleted
	}

	worker, err := s.dispatch.Dispatch(ctx, executionRequest(*t))
	if err != nil {
		return "", err
	}

	s.registry.RecordDispatch(worker, t.ID)
	if err := s.repo.MarkDispatched(ctx, t.ID); err != nil {
		return "", err
	}
	return worker, nil
}

func executionRequest(t Task) types.ExecutionRequest {
	return types.ExecutionRequest{
		TaskID:   t.ID,
		Name:     t.Name,
		Priority: t.Priority,
	}
}

// ownerSignal condensa la identidad del owner en un feature numérico estable
// en [0, 1), como hacía el modelo original con el id de usuario.
func ownerSignal(userID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return float64(h.Sum32()%100) / 100.0
}
