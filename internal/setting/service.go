package setting

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/core/events"
)

type Repository interface {
	List() ([]*Setting, error)
	Get(key string) (*Setting, error)
	Upsert(s *Setting) error
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) List() ([]*Setting, error) {
	return s.repo.List()
}

func (s *Service) Get(key string) (*Setting, error) {
	return s.repo.Get(strings.TrimSpace(key))
}

// Upsert writes one setting and records who changed it.
func (s *Service) Upsert(actor string, dto UpsertSettingDTO) (*Setting, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	setting := &Setting{
		Key:           strings.TrimSpace(dto.Key),
		Value:         strings.TrimSpace(dto.Value),
		LastUpdated:   time.Now(),
		LastUpdatedBy: actor,
	}

	if err := s.repo.Upsert(setting); err != nil {
		s.logger.Error("failed to upsert setting", "error", err, "key", setting.Key)
		return nil, err
	}

	s.publish(actor, setting.Key)
	return setting, nil
}

func (s *Service) publish(actor, key string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), events.NewAuditEvent(events.EventSettingUpdated, actor, key, nil)); err != nil {
		s.logger.Warn("audit publish failed", "event_type", events.EventSettingUpdated, "error", err)
	}
}
