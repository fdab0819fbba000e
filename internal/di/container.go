// Package di provides dependency injection configuration for the CityBreaker server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/citybreaker/citybreaker-server/internal/auth"
	"github.com/citybreaker/citybreaker-server/internal/config"
	"github.com/citybreaker/citybreaker-server/internal/describe"
	"github.com/citybreaker/citybreaker-server/internal/di/providers"
	"github.com/citybreaker/citybreaker-server/internal/logger"
	"github.com/citybreaker/citybreaker-server/internal/places"
	"github.com/citybreaker/citybreaker-server/internal/service"
	"github.com/citybreaker/citybreaker-server/internal/vision"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Upstream clients
	do.Provide(injector, providers.ProvideVisionClient)
	do.Provide(injector, providers.ProvideDescribeClient)
	do.Provide(injector, providers.ProvidePlacesClient)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvidePreferenceService)
	do.Provide(injector, providers.ProvideScanService)
	do.Provide(injector, providers.ProvideRecommendService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*vision.Client](injector)
	_ = do.MustInvoke[*describe.Client](injector)
	_ = do.MustInvoke[*places.Client](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.PreferenceService](injector)
	_ = do.MustInvoke[*service.ScanService](injector)
	_ = do.MustInvoke[*service.RecommendService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
