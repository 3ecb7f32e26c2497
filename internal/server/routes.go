package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/scrawl/internal/api/v1"
	"github.com/gosuda/scrawl/internal/api/ws"
	"github.com/gosuda/scrawl/internal/auth"
	"github.com/gosuda/scrawl/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store) {
	v1.RegisterRoomRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/", hub.ServeSession)
	r.Get("/rooms/{slug}/watch", hub.ServeWatch)
}
