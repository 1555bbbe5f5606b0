package queue

import (
	"encoding/json"
	"time"

	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeSendNotification = "notification:send"

const maxDeliveryRetries = 5

type NotificationPayload struct {
	UserID        uuid.UUID         `json:"user_id"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Data          map[string]string `json:"data,omitempty"`
	BusinessID    uuid.UUID         `json:"business_id"`
	ReservationID *uuid.UUID        `json:"reservation_id,omitempty"`
}

// NewNotificationTask builds the task for n. The task id is n.Key when set
// so that scheduling the same notification twice is rejected by asynq.
func NewNotificationTask(n shared.Notification, queueName string) (*asynq.Task, []asynq.Option, string, error) {
	b, err := json.Marshal(NotificationPayload{
		UserID:        n.UserID,
		Type:          string(n.Type),
		Title:         n.Title,
		Body:          n.Body,
		Data:          n.Data,
		BusinessID:    n.BusinessID,
		ReservationID: n.ReservationID,
	})
	if err != nil {
		return nil, nil, "", err
	}

	taskID := n.Key
	if taskID == "" {
		taskID = uuid.NewString()
	}

	opts := []asynq.Option{
		asynq.TaskID(taskID),
		asynq.Queue(queueName),
		asynq.MaxRetry(maxDeliveryRetries),
		asynq.Retention(24 * time.Hour),
	}
	if n.SendAt != nil {
		opts = append(opts, asynq.ProcessAt(*n.SendAt))
	}

	return asynq.NewTask(TypeSendNotification, b), opts, taskID, nil
}

func ParseNotificationPayload(t *asynq.Task) (NotificationPayload, error) {
	var p NotificationPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
