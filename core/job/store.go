package job

import (
	"context"
	"errors"

	"wavecut/model"
)

// ErrNotFound is returned when a job id is unknown to the store.
var ErrNotFound = errors.New("job not found")

// Store is the job registry. Implementations must be safe for concurrent use:
// distinct jobs run on distinct goroutines and the HTTP layer reads statuses
// while executors write them.
type Store interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, id string) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Job, error)
}
