package tasks

import (
	"context"
	"fmt"
	"time"

	"taskgrid/pkg/types"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const taskCounterID = "tasks"

type mongoRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoRepository crea un repositorio de tareas basado en MongoDB. Los ids
// numéricos salen de un contador en la colección counters.
func NewMongoRepository(coll, counters *mongo.Collection) Repository {
	return &mongoRepository{coll: coll, counters: counters}
}

func (r *mongoRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("tasks: generando id: %w", err)
	}
	return doc.Seq, nil
}

func (r *mongoRepository) Create(ctx context.Context, t *Task) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	t.ID = id

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("tasks: insertando tarea: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, userID string, id int64) (*Task, error) {
	var t Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("tasks: buscando tarea %d: %w", id, err)
	}
	return &t, nil
}

func (r *mongoRepository) MarkDispatched(ctx context.Context, id int64) error {
	// El filtro sobre status garantiza que el estado no retrocede aunque la
	// tarea ya se haya completado mientras el dispatch estaba en vuelo.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": types.StatusPending},
		bson.M{"$set": bson.M{"status": types.StatusDispatched}},
	)
	if err != nil {
		return fmt.Errorf("tasks: marcando dispatched %d: %w", id, err)
	}
	return nil
}

func (r *mongoRepository) MarkCompleted(ctx context.Context, userID string, id int64, at time.Time) (*Task, error) {
	// Solo la primera transición fija completedAt; una repetición no matchea
	// el filtro y conserva el timestamp original.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID, "status": bson.M{"$ne": types.StatusCompleted}},
		bson.M{"$set": bson.M{"status": types.StatusCompleted, "completedAt": at}},
	)
	if err != nil {
		return nil, fmt.Errorf("tasks: marcando completed %d: %w", id, err)
	}

	// GetByID distingue "no existe / no es tuya" (ErrTaskNotFound) de la
	// repetición idempotente, que simplemente devuelve la tarea ya completada.
	return r.GetByID(ctx, userID, id)
}
