package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
	"repurpose-backend/internal/queue"
)

type ContentStore interface {
	UpsertContent(ctx context.Context, videoID uuid.UUID, contentType models.ContentType, data any, status models.Status, errMsg string) error
}

type CreditLedger interface {
	GetCredits(ctx context.Context, userID uuid.UUID) (int, error)
	DeductCredit(ctx context.Context, userID uuid.UUID) (int, error)
}

// Stage produces one content type from a transcript.
type Stage[T any] struct {
	Type     models.ContentType
	Generate func(ctx context.Context, job models.ContentJob) (T, error)
}

type StageDeps struct {
	Content ContentStore
	Credits CreditLedger
	Logger  *slog.Logger
}

var emptyPayload = struct{}{}

// RunStage drives one content row through processing to completed or failed
// and charges one credit only after the completed payload is stored.
//
// An owner without credit fails the job before the generator runs. A charge
// that still fails after completion (another job spent the last credit)
// leaves the row completed and fails the job without retry, so a retry can
// never overwrite delivered content.
func RunStage[T any](ctx context.Context, deps StageDeps, stage Stage[T], job models.ContentJob) error {
	log := deps.Logger.With("content_type", stage.Type, "video_id", job.VideoID, "user_id", job.UserID)
	log.Info("starting content generation")

	if err := deps.Content.UpsertContent(ctx, job.VideoID, stage.Type, emptyPayload, models.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark %s processing: %w", stage.Type, err)
	}

	balance, err := deps.Credits.GetCredits(ctx, job.UserID)
	if err != nil {
		return fail(ctx, deps, log, stage.Type, job, fmt.Errorf("failed to read credits: %w", err))
	}
	if balance < 1 {
		return queue.Permanent(fail(ctx, deps, log, stage.Type, job, apperror.InsufficientCredits()))
	}

	result, err := stage.Generate(ctx, job)
	if err != nil {
		return fail(ctx, deps, log, stage.Type, job, err)
	}

	if err := deps.Content.UpsertContent(ctx, job.VideoID, stage.Type, result, models.StatusCompleted, ""); err != nil {
		return fail(ctx, deps, log, stage.Type, job, err)
	}

	remaining, err := deps.Credits.DeductCredit(ctx, job.UserID)
	if err != nil {
		log.Error("content completed but credit charge failed", "error", err)
		return queue.Permanent(fmt.Errorf("failed to deduct credit for %s: %w", stage.Type, err))
	}

	log.Info("content generation completed", "credits_remaining", remaining)
	return nil
}

func fail(ctx context.Context, deps StageDeps, log *slog.Logger, contentType models.ContentType, job models.ContentJob, cause error) error {
	log.Error("content generation failed", "error", cause)

	msg := apperror.Message(cause, cause.Error())
	// The handler context may already be past its deadline; the failure must still land.
	storeCtx, cancel := detached(ctx)
	defer cancel()
	if err := deps.Content.UpsertContent(storeCtx, job.VideoID, contentType, emptyPayload, models.StatusFailed, msg); err != nil {
		log.Error("failed to record content failure", "error", err)
	}
	return cause
}
