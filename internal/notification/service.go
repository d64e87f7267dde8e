package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

// Service is a composite notification service that can send notifications
// through multiple channels
type Service struct {
	email   *EmailService
	discord *DiscordService
}

// NewService creates a new notification service
func NewService(log zerolog.Logger, config *domain.Config) domain.NotificationService {
	var discord *DiscordService
	if config.DiscordWebhookURL != "" {
		discord = NewDiscordService(log, config.DiscordWebhookURL)
	}

	return &Service{
		email:   NewEmailService(log, config),
		discord: discord,
	}
}

// SendDelta sends citation-gain notifications through all configured channels
func (s *Service) SendDelta(ctx context.Context, delta domain.Delta, current *domain.Snapshot) error {
	if s.email != nil {
		if err := s.email.SendDelta(ctx, delta, current); err != nil {
			return err
		}
	}
	if s.discord != nil {
		if err := s.discord.SendDelta(ctx, delta, current); err != nil {
			return err
		}
	}
	return nil
}

// SendError sends error notifications through all configured channels
func (s *Service) SendError(ctx context.Context, err error) error {
	if s.discord != nil {
		if err := s.discord.SendError(ctx, err); err != nil {
			return err
		}
	}
	return nil
}
