package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/citybreaker/citybreaker-server/internal/api"
	"github.com/citybreaker/citybreaker-server/internal/config"
	"github.com/citybreaker/citybreaker-server/internal/logger"
	"github.com/citybreaker/citybreaker-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	preferenceService := do.MustInvoke[*service.PreferenceService](i)
	scanService := do.MustInvoke[*service.ScanService](i)
	recommendService := do.MustInvoke[*service.RecommendService](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	services := &api.Services{
		Auth:       authService,
		Session:    sessionService,
		Preference: preferenceService,
		Scan:       scanService,
		Recommend:  recommendService,
		Search:     searchService,
	}

	handler := api.NewServer(storeHandle.Store, services, cfg.Recommend.DefaultRadiusKm, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
