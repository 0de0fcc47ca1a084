package services

import (
	"strings"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
)

// Built-in background sets, used when the configured list is blank.
const (
	DefaultHostedBackgrounds = "space1.svg,space2.svg,space3.svg"
	DefaultLocalBackgrounds  = "local1.svg,local2.svg,local3.svg"
)

// BackgroundCatalog lists the background images offered to clients
type BackgroundCatalog struct {
	cfg config.BackgroundsConfig
}

// NewBackgroundCatalog creates a catalog for the given deployment
func NewBackgroundCatalog(cfg config.BackgroundsConfig) *BackgroundCatalog {
	return &BackgroundCatalog{cfg: cfg}
}

// Available returns the background descriptors in configured order
func (c *BackgroundCatalog) Available() []entities.Background {
	list := c.cfg.LocalList
	fallback := DefaultLocalBackgrounds
	if c.cfg.Hosted {
		list = c.cfg.HostedList
		fallback = DefaultHostedBackgrounds
	}
	if strings.TrimSpace(list) == "" {
		list = fallback
	}

	backgrounds := []entities.Background{}
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		backgrounds = append(backgrounds, entities.Background{
			Name: name,
			URL:  entities.BackgroundURLPrefix + name,
		})
	}

	return backgrounds
}
