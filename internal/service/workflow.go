package service

import (
	"context"

	"mentorcircles/internal/featureflags"
	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
)

// workflow runs multi-statement circle operations. By default each statement
// commits on its own, so concurrent submissions can both read the same fill
// count before either writes. With serialized_circle_writes enabled for the
// caller the whole operation runs in one transaction holding the circle row.
type workflow struct {
	store *repository.Store
	flags *featureflags.Manager
}

func (w *workflow) serialized(callerID string) bool {
	return w.flags != nil && w.flags.Enabled(featureflags.SerializedCircleWrites, callerID)
}

// run calls fn with the repositories to use and the circle as fn should see
// it. In serialized mode the circle is re-read under the lock.
func (w *workflow) run(ctx context.Context, circle *models.Circle, callerID string, fn func(repository.Repositories, *models.Circle) error) error {
	if !w.serialized(callerID) {
		return fn(w.store.Repos(), circle)
	}
	return w.store.Serialized(ctx, circle.ID, func(repos repository.Repositories) error {
		current, err := repos.Circles.GetByID(ctx, circle.ID)
		if err != nil {
			return err
		}
		return fn(repos, current)
	})
}
