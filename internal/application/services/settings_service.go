package services

import (
	"context"
	"fmt"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// SettingsService manages the global display settings
type SettingsService struct {
	store       ports.DocumentStore
	backgrounds *BackgroundCatalog
	logger      *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store ports.DocumentStore, backgrounds *BackgroundCatalog, logger *logger.Logger) *SettingsService {
	return &SettingsService{
		store:       store,
		backgrounds: backgrounds,
		logger:      logger,
	}
}

// GetSettings returns the stored settings together with the background choices
func (s *SettingsService) GetSettings(ctx context.Context) (*ports.SettingsResponse, error) {
	return &ports.SettingsResponse{
		Settings:             s.store.GetSettings(),
		AvailableBackgrounds: s.backgrounds.Available(),
	}, nil
}

// SaveSettings replaces the settings record. Fields not supplied are not
// carried over from the previous record.
func (s *SettingsService) SaveSettings(ctx context.Context, req ports.SaveSettingsRequest) (*entities.Settings, error) {
	settings := entities.Settings{
		Background:     req.Background,
		BackgroundType: valueOr(req.BackgroundType, entities.DefaultBackgroundType),
	}

	if err := s.store.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Infow("Settings saved", "background_type", settings.BackgroundType)

	return &settings, nil
}
