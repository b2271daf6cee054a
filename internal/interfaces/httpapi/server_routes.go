package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST "+jobPathSyncPlayers, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncPlayersJob)))
	mux.Handle("POST "+jobPathSyncStats, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncStatsJob)))
	mux.Handle("POST "+jobPathSyncDateRange, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncDateRangeJob)))
	mux.Handle("POST "+jobPathFullSync, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFullSyncJob)))
	mux.Handle("POST "+jobPathCancel, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CancelSyncJob)))
	mux.Handle("GET /v1/internal/jobs/dispatches/{dispatchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListDispatchEvents)))
}

func registerInternalQueryRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("GET /v1/internal/sync/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetSyncStatus)))
	mux.Handle("GET /v1/internal/sync/reports", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListSyncReports)))
	mux.Handle("GET /v1/internal/sync/reports/{syncID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetSyncReport)))
	mux.Handle("GET /v1/internal/players/reviews", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListPendingReviews)))
	mux.Handle("POST /v1/internal/players/{candidateID}/link", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.LinkPlayer)))
}
