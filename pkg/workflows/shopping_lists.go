package workflows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// ShoppingListUsers is the part of the user service the activities drive.
type ShoppingListUsers interface {
	AffectedUsers(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)
	RecomputeUser(ctx context.Context, userID uuid.UUID) error
}

// ShoppingListActivities are the activities of RecomputeShoppingListsWorkflow.
type ShoppingListActivities struct {
	Users ShoppingListUsers
	// Gone reports errors meaning the user no longer exists. Such users are
	// skipped instead of retried.
	Gone func(error) bool
}

// AffectedUsers lists the users whose menu contains recipeID.
func (a *ShoppingListActivities) AffectedUsers(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	return a.Users.AffectedUsers(ctx, recipeID)
}

// RecomputeUser rebuilds one user's shopping list.
func (a *ShoppingListActivities) RecomputeUser(ctx context.Context, userID uuid.UUID) error {
	err := a.Users.RecomputeUser(ctx, userID)
	if err != nil && a.Gone != nil && a.Gone(err) {
		return nil
	}
	return err
}

// RecomputeResult summarizes one workflow run.
type RecomputeResult struct {
	Recomputed int         `json:"recomputed"`
	Failed     []uuid.UUID `json:"failed,omitempty"`
}

var recomputeActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 30 * time.Second,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
	},
}

// RecomputeShoppingListsWorkflow recomputes the shopping list of every user
// whose menu contains recipeID. Users are recomputed in parallel; a user that
// still fails after retries is reported in the result and does not fail the run.
func RecomputeShoppingListsWorkflow(ctx workflow.Context, recipeID uuid.UUID) (RecomputeResult, error) {
	ctx = workflow.WithActivityOptions(ctx, recomputeActivityOptions)
	log := workflow.GetLogger(ctx)

	var a *ShoppingListActivities
	var userIDs []uuid.UUID
	if err := workflow.ExecuteActivity(ctx, a.AffectedUsers, recipeID).Get(ctx, &userIDs); err != nil {
		return RecomputeResult{}, err
	}

	futures := make([]workflow.Future, len(userIDs))
	for i, id := range userIDs {
		futures[i] = workflow.ExecuteActivity(ctx, a.RecomputeUser, id)
	}

	var res RecomputeResult
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			log.Warn("shopping list recompute failed", "recipe_id", recipeID, "user_id", userIDs[i], "error", err)
			res.Failed = append(res.Failed, userIDs[i])
			continue
		}
		res.Recomputed++
	}
	log.Info("shopping lists recomputed", "recipe_id", recipeID, "recomputed", res.Recomputed, "failed", len(res.Failed))
	return res, nil
}

// NewWorker returns a worker on taskQueue with the shopping-list workflow
// and its activities registered. The caller runs and stops it.
func NewWorker(c client.Client, taskQueue string, activities *ShoppingListActivities) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(RecomputeShoppingListsWorkflow)
	w.RegisterActivity(activities)
	return w
}
