package email

import (
	"context"
	"fmt"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
)

// SendObserver records the outcome of every send. *metrics.Collector satisfies it.
type SendObserver interface {
	ObserveEmail(template string, err error)
}

// Sender renders a template and delivers it through a Mailer
type Sender struct {
	renderer *Renderer
	mailer   Mailer
	from     string
	observer SendObserver
}

// NewSender creates a Sender using the configured from address
func NewSender(renderer *Renderer, mailer Mailer, cfg config.EmailConfig) *Sender {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &Sender{renderer: renderer, mailer: mailer, from: from}
}

// SetObserver reports send outcomes to o
func (s *Sender) SetObserver(o SendObserver) {
	s.observer = o
}

// Send renders name with data in locale and delivers it to the recipients
func (s *Sender) Send(ctx context.Context, orgID uuid.UUID, name, locale string, to []string, data any) error {
	err := s.send(ctx, orgID, name, locale, to, data)
	if s.observer != nil {
		s.observer.ObserveEmail(name, err)
	}
	return err
}

func (s *Sender) send(ctx context.Context, orgID uuid.UUID, name, locale string, to []string, data any) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	rendered, err := s.renderer.Render(name, locale, data)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Message{
		ID:             uuid.New(),
		OrganizationID: orgID,
		From:           s.from,
		To:             to,
		Subject:        rendered.Subject,
		HTML:           rendered.HTML,
		Template:       name,
		Locale:         locale,
		CreatedAt:      time.Now().UTC(),
	})
}

// Preview renders a template with its sample data
func (s *Sender) Preview(name, locale string) (*Rendered, error) {
	data, ok := SampleData(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return s.renderer.Render(name, locale, data)
}
