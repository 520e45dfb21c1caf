package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"dressing-virtuel/logging"
	"dressing-virtuel/models"
)

const submissionTopic = "wardrobe.submissions"

// Queue modes
const (
	QueueModeEager      = "eager"
	QueueModeBackground = "background"
)

// SubmissionProcessor runs one submission through the pipeline
type SubmissionProcessor interface {
	IdentifyClothes(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error)
}

// SubmissionQueue hands submissions to the pipeline, one at a time.
// In eager mode Enqueue runs the submission inline; in background mode it
// publishes a message consumed by Serve.
type SubmissionQueue struct {
	processor SubmissionProcessor
	mode      string
	pubsub    *gochannel.GoChannel
	messages  <-chan *message.Message
}

// NewSubmissionQueue creates a SubmissionQueue. The subscription is opened
// here so that messages published before Serve starts are kept.
func NewSubmissionQueue(processor SubmissionProcessor, mode string, buffer int64) (*SubmissionQueue, error) {
	q := &SubmissionQueue{processor: processor, mode: mode}
	if mode == QueueModeEager {
		return q, nil
	}

	q.pubsub = gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, watermill.NopLogger{})

	messages, err := q.pubsub.Subscribe(context.Background(), submissionTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", submissionTopic, err)
	}
	q.messages = messages
	return q, nil
}

// NewSubmission builds a submission with a fresh id
func NewSubmission(clientID int, imagePaths []string) models.Submission {
	return models.Submission{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		ImagePaths: imagePaths,
	}
}

// Eager reports whether submissions run inline
func (q *SubmissionQueue) Eager() bool {
	return q.mode == QueueModeEager
}

// Enqueue schedules a submission. In eager mode the report is returned.
func (q *SubmissionQueue) Enqueue(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error) {
	if q.Eager() {
		return q.RunNow(ctx, submission)
	}

	payload, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	if err := q.pubsub.Publish(submissionTopic, message.NewMessage(submission.ID, payload)); err != nil {
		return nil, fmt.Errorf("failed to publish submission: %w", err)
	}

	logging.Info().Str("submission", submission.ID).Int("client_id", submission.ClientID).Msg("📨 Submission queued")
	return nil, nil
}

// RunNow processes a submission on the calling goroutine. The run is not
// cancelled when ctx is; a started submission always completes.
func (q *SubmissionQueue) RunNow(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error) {
	report, err := q.processor.IdentifyClothes(context.WithoutCancel(ctx), submission)
	if err != nil {
		discardImages(submission)
		return nil, err
	}
	return report, nil
}

// Serve consumes queued submissions until ctx is done. It implements suture.Service.
func (q *SubmissionQueue) Serve(ctx context.Context) error {
	if q.Eager() {
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().Str("topic", submissionTopic).Msg("👷 Submission worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-q.messages:
			if !ok {
				return errors.New("submission channel closed")
			}
			q.handle(ctx, msg)
		}
	}
}

// handle always acks: a failed submission is logged and dropped, never redelivered
func (q *SubmissionQueue) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var submission models.Submission
	if err := json.Unmarshal(msg.Payload, &submission); err != nil {
		logging.Error().Err(err).Str("message", msg.UUID).Msg("❌ Dropping malformed submission")
		return
	}

	if _, err := q.RunNow(ctx, submission); err != nil {
		logging.Error().Err(err).Str("submission", submission.ID).Msg("❌ Submission aborted")
	}
}

// Close stops the pub/sub
func (q *SubmissionQueue) Close() error {
	if q.pubsub == nil {
		return nil
	}
	return q.pubsub.Close()
}

// String names the service in supervisor logs
func (q *SubmissionQueue) String() string {
	return "submission-queue"
}

// discardImages removes the temp files of a submission that never got processed
func discardImages(submission models.Submission) {
	for _, path := range submission.ImagePaths {
		removeTempFile(path)
	}
	logging.Warn().Str("submission", submission.ID).Int("images", len(submission.ImagePaths)).Msg("🗑️  Discarded images of aborted submission")
}
