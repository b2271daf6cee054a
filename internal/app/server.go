package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/interfaces/httpapi"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

func NewHTTPServer(cfg config.Config, c *Container, logger *logging.Logger) (*http.Server, error) {
	if c == nil {
		return nil, fmt.Errorf("container is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	handler := httpapi.NewHandler(c.Coordinator, c.Reports, c.Links, c.Dispatcher, c.DispatchRepo, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.HTTP.SwaggerEnabled,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		InternalJobToken:   cfg.HTTP.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
