package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the API handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	s := &server{
		engine:  d.Engine,
		graph:   d.Graph,
		inbox:   d.Inbox,
		invites: d.Invites,
		logger:  d.Logger,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/presence/events", s.handlePresenceEvent)
		r.Get("/where/{entity}", s.handleWhere)
		r.Post("/notify", s.handleNotify)
		r.Post("/follow", s.handleFollow)
		r.Delete("/follow/{entity}", s.handleStopFollow)
		r.Post("/vcnotify", s.handleVCNotify)
		r.Delete("/vcnotify/{room}", s.handleStopVCNotify)
		r.Get("/subscriptions", s.handleSubscriptions)
		r.Get("/inbox", s.handleInboxAll)
		r.Get("/inbox/{destination}", s.handleInbox)
	})
	r.Get("/invite/{code}", s.handleInvite)

	return r
}
