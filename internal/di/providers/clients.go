package providers

import (
	"github.com/samber/do/v2"

	"github.com/citybreaker/citybreaker-server/internal/config"
	"github.com/citybreaker/citybreaker-server/internal/describe"
	"github.com/citybreaker/citybreaker-server/internal/logger"
	"github.com/citybreaker/citybreaker-server/internal/places"
	"github.com/citybreaker/citybreaker-server/internal/vision"
)

// ProvideVisionClient provides the Google Vision landmark detection client.
func ProvideVisionClient(i do.Injector) (*vision.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Google.VisionBaseURL != "" {
		return vision.NewWithBaseURL(cfg.Google.APIKey, cfg.Google.VisionBaseURL, log.Logger), nil
	}
	return vision.New(cfg.Google.APIKey, log.Logger), nil
}

// ProvideDescribeClient provides the Anthropic description and tagging client.
func ProvideDescribeClient(i do.Injector) (*describe.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Anthropic.BaseURL != "" {
		return describe.NewWithBaseURL(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL, log.Logger), nil
	}
	return describe.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, log.Logger), nil
}

// ProvidePlacesClient provides the Google Maps places and geocoding client.
func ProvidePlacesClient(i do.Injector) (*places.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Google.MapsBaseURL != "" {
		return places.NewWithBaseURL(cfg.Google.APIKey, cfg.Google.MapsBaseURL, log.Logger), nil
	}
	return places.New(cfg.Google.APIKey, log.Logger), nil
}
