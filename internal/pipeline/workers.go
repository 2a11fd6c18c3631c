package pipeline

import (
	"context"

	"repurpose-backend/internal/generator"
	"repurpose-backend/internal/models"
	"repurpose-backend/internal/queue"
)

type JobServer interface {
	Handle(name string, opts queue.Options, handler queue.HandlerFunc)
}

// Workers binds every queue to its handler.
type Workers struct {
	deps          StageDeps
	text          *generator.Generator
	thumbnails    *generator.ThumbnailGenerator
	transcription *TranscriptionWorker
}

func NewWorkers(deps StageDeps, text *generator.Generator, thumbnails *generator.ThumbnailGenerator, transcription *TranscriptionWorker) *Workers {
	return &Workers{
		deps:          deps,
		text:          text,
		thumbnails:    thumbnails,
		transcription: transcription,
	}
}

func (w *Workers) Register(srv JobServer) {
	srv.Handle(queue.Transcription, queue.DefaultOptions(queue.Transcription), w.handleTranscription)

	srv.Handle(queue.Shorts, queue.DefaultOptions(queue.Shorts), contentHandler(w.deps, Stage[models.ShortsData]{
		Type:     models.ContentShorts,
		Generate: textStage(w.text.Shorts),
	}))
	srv.Handle(queue.Blog, queue.DefaultOptions(queue.Blog), contentHandler(w.deps, Stage[models.BlogData]{
		Type:     models.ContentBlog,
		Generate: textStage(w.text.Blog),
	}))
	srv.Handle(queue.Twitter, queue.DefaultOptions(queue.Twitter), contentHandler(w.deps, Stage[models.TwitterData]{
		Type:     models.ContentTwitter,
		Generate: textStage(w.text.Twitter),
	}))
	srv.Handle(queue.LinkedIn, queue.DefaultOptions(queue.LinkedIn), contentHandler(w.deps, Stage[models.LinkedInData]{
		Type:     models.ContentLinkedIn,
		Generate: textStage(w.text.LinkedIn),
	}))
	srv.Handle(queue.Instagram, queue.DefaultOptions(queue.Instagram), contentHandler(w.deps, Stage[models.InstagramData]{
		Type:     models.ContentInstagram,
		Generate: textStage(w.text.Instagram),
	}))
	srv.Handle(queue.Thumbnail, queue.DefaultOptions(queue.Thumbnail), contentHandler(w.deps, Stage[models.ThumbnailData]{
		Type:     models.ContentThumbnail,
		Generate: w.thumbnails.Generate,
	}))
}

func (w *Workers) handleTranscription(ctx context.Context, job *queue.Job) error {
	var payload models.TranscriptionJob
	if err := job.Decode(&payload); err != nil {
		return err
	}
	return w.transcription.Process(ctx, payload)
}

func contentHandler[T any](deps StageDeps, stage Stage[T]) queue.HandlerFunc {
	return func(ctx context.Context, job *queue.Job) error {
		var payload models.ContentJob
		if err := job.Decode(&payload); err != nil {
			return err
		}
		return RunStage(ctx, deps, stage, payload)
	}
}

// textStage adapts a transcript-and-title generator to the stage signature.
func textStage[T any](fn func(ctx context.Context, transcript, title string) (T, error)) func(context.Context, models.ContentJob) (T, error) {
	return func(ctx context.Context, job models.ContentJob) (T, error) {
		return fn(ctx, job.Transcript, job.VideoTitle)
	}
}
