package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/toymall/user-service/internal/domain"
	pkgkafka "github.com/toymall/user-service/pkg/kafka"
	"github.com/toymall/user-service/pkg/logger"
)

// Kafka topics for user domain events.
const (
	TopicUserRegistered = "toymall.user.registered"
)

const (
	AggregateTypeUser = "user"
	SourceUserService = "user-service"
)

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	Status string   `json:"status"`
}

// Publisher is the event-publishing port consumed by the use cases.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the user service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event keyed by user id.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	roles := user.Roles()
	roleStrings := make([]string, len(roles))
	for i, r := range roles {
		roleStrings[i] = string(r)
	}

	data := UserRegisteredData{
		ID:     user.ID().Value(),
		Email:  user.Email().Value(),
		Roles:  roleStrings,
		Status: string(user.Status()),
	}

	evt, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID().Value(), AggregateTypeUser, SourceUserService, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		evt.WithCorrelationID(correlationID)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, evt); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID().Value()),
		slog.String("email", user.Email().Value()),
	)

	return nil
}
