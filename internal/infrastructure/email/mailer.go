package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Message is an email ready for delivery
type Message struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	From           string    `json:"from"`
	To             []string  `json:"to"`
	Subject        string    `json:"subject"`
	HTML           string    `json:"html"`
	Template       string    `json:"template"`
	Locale         string    `json:"locale"`
	CreatedAt      time.Time `json:"created_at"`
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// ErrNoRecipients is returned for messages without recipients
var ErrNoRecipients = errors.New("email has no recipients")

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message envelope
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.logger.Info("Email",
		zap.String("template", msg.Template),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("organization_id", msg.OrganizationID.String()),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// Close is a no-op
func (m *LogMailer) Close() error { return nil }

// amqpChannel is the subset of *amqp.Channel the queue mailer uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// QueueMailer publishes messages as JSON to a RabbitMQ exchange. A separate
// delivery worker consumes the queue and talks to the mail provider.
type QueueMailer struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewQueueMailer dials RabbitMQ and declares the exchange, queue and binding
func NewQueueMailer(cfg config.EmailConfig, logger *zap.Logger) (*QueueMailer, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue %s: %w", cfg.Queue, err)
	}

	return &QueueMailer{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// newQueueMailerWithChannel is used by tests
func newQueueMailerWithChannel(ch amqpChannel, exchange, routingKey string) *QueueMailer {
	return &QueueMailer{channel: ch, exchange: exchange, routingKey: routingKey, logger: zap.NewNop()}
}

// Send publishes the message as a persistent JSON delivery
func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	// amqp channels are not safe for concurrent publishing
	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.channel.PublishWithContext(ctx, m.exchange, m.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.ID.String(),
		Type:         msg.Template,
		Timestamp:    msg.CreatedAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish email: %w", err)
	}
	m.logger.Debug("Email queued", zap.String("template", msg.Template), zap.String("message_id", msg.ID.String()))
	return nil
}

// Close closes the channel and connection
func (m *QueueMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	if m.channel != nil {
		errs = append(errs, m.channel.Close())
	}
	if m.conn != nil {
		errs = append(errs, m.conn.Close())
	}
	return errors.Join(errs...)
}

// NewMailer builds the mailer selected by configuration
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Mailer {
	case "amqp":
		return NewQueueMailer(cfg, logger)
	case "", "log":
		return NewLogMailer(logger), nil
	}
	return nil, fmt.Errorf("unknown mailer %q", cfg.Mailer)
}
