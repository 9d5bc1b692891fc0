package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer hands stage jobs to the durable queue. Workers and the
// approval engine depend on this interface rather than the asynq client so
// they can be tested without a broker.
type TaskEnqueuer interface {
	EnqueueContent(postID int64, topic string) error
	EnqueueImage(postID int64) error
	EnqueuePublish(postID int64) error
	EnqueueDelayedApproval(postID int64, delay time.Duration) error
}

type clientEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) TaskEnqueuer {
	return &clientEnqueuer{client: client}
}

func (e *clientEnqueuer) enqueue(taskType string, payload any, queueName string, opts ...asynq.Option) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, taskPayload)

	opts = append(opts,
		asynq.Queue(queueName),
		asynq.MaxRetry(MaxAttempts-1),
		asynq.Timeout(2*time.Minute),
	)
	_, err = e.client.Enqueue(task, opts...)
	if err != nil {
		return err
	}

	log.Printf("Task enqueued: %s %+v", taskType, payload)
	return nil
}

func (e *clientEnqueuer) EnqueueContent(postID int64, topic string) error {
	return e.enqueue(TaskTypeGenerateContent, ContentPayload{PostID: postID, Topic: topic}, QueueContent)
}

func (e *clientEnqueuer) EnqueueImage(postID int64) error {
	return e.enqueue(TaskTypeGenerateImage, ImagePayload{PostID: postID}, QueueImage)
}

func (e *clientEnqueuer) EnqueuePublish(postID int64) error {
	return e.enqueue(TaskTypePublish, PublishPayload{PostID: postID}, QueuePublish)
}

func (e *clientEnqueuer) EnqueueDelayedApproval(postID int64, delay time.Duration) error {
	return e.enqueue(TaskTypeDelayedApproval, DelayedApprovalPayload{PostID: postID}, QueueContent, asynq.ProcessIn(delay))
}

// RetryDelay implements exponential backoff for failed stage jobs,
// doubling from RetryBaseDelay on every attempt.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return RetryBaseDelay << n
}
