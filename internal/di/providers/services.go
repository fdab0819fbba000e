package providers

import (
	"github.com/samber/do/v2"

	"github.com/citybreaker/citybreaker-server/internal/auth"
	"github.com/citybreaker/citybreaker-server/internal/describe"
	"github.com/citybreaker/citybreaker-server/internal/logger"
	"github.com/citybreaker/citybreaker-server/internal/places"
	"github.com/citybreaker/citybreaker-server/internal/service"
	"github.com/citybreaker/citybreaker-server/internal/vision"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvidePreferenceService provides the preference profile service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferenceService(storeHandle.Store, log.Logger), nil
}

// ProvideScanService provides the landmark scan service.
func ProvideScanService(i do.Injector) (*service.ScanService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	visionClient := do.MustInvoke[*vision.Client](i)
	describeClient := do.MustInvoke[*describe.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewScanService(storeHandle.Store, visionClient, describeClient, log.Logger), nil
}

// ProvideRecommendService provides the recommendation ranking service.
func ProvideRecommendService(i do.Injector) (*service.RecommendService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	preferenceService := do.MustInvoke[*service.PreferenceService](i)
	placesClient := do.MustInvoke[*places.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendService(storeHandle.Store, preferenceService, placesClient, log.Logger), nil
}
