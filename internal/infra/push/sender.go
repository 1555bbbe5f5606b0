package push

import (
	"context"
	"log/slog"

	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrUnregistered means the device token is no longer valid and retrying is
// pointless.
var ErrUnregistered = errs.New("push token is no longer registered")

type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(ctx context.Context, cfg config.FirebaseConfig) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, errs.Wrap(err, "firebase: error initializing app")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "firebase: error getting messaging client")
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, m Message) error {
	id, err := s.client.Send(ctx, &messaging.Message{
		Token: m.Token,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
		Data: m.Data,
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return errs.Mark(err, ErrUnregistered)
		}
		return errs.Wrap(err, "fcm send")
	}
	slog.Debug("push sent", "message_id", id)
	return nil
}

// LogSender stands in for FCM when no credentials are configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	slog.Info("push (not delivered: firebase disabled)", "title", m.Title, "body", m.Body)
	return nil
}

// NewSender returns an FCM sender when credentials are configured.
func NewSender(ctx context.Context, cfg config.FirebaseConfig) (Sender, error) {
	if cfg.CredentialsFile == "" {
		slog.Warn("firebase credentials not configured, push notifications are logged only")
		return LogSender{}, nil
	}
	return NewFCMSender(ctx, cfg)
}
