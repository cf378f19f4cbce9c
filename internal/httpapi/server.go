package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roomwatch/roomwatch-go/pkg/delivery"
	"github.com/roomwatch/roomwatch-go/pkg/duration"
	"github.com/roomwatch/roomwatch-go/pkg/invite"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

const maxBodyBytes = 64 << 10

type server struct {
	engine  *subscription.Engine
	graph   *presence.Graph
	inbox   *delivery.Inbox
	invites *invite.Service
	logger  *slog.Logger
}

type presenceEventReq struct {
	Kind       string `json:"kind"`
	Entity     string `json:"entity"`
	EntityName string `json:"entity_name,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

type memberReq struct {
	Requester   string `json:"requester"`
	Subject     string `json:"subject"`
	Destination string `json:"destination"`
	Duration    string `json:"duration,omitempty"`
	Active      bool   `json:"active,omitempty"`
}

type roomReq struct {
	Requester   string `json:"requester"`
	Room        string `json:"room"`
	Destination string `json:"destination"`
	Duration    string `json:"duration,omitempty"`
}

type subscriptionDTO struct {
	Mode        string    `json:"mode"`
	Kind        string    `json:"kind"`
	Requester   string    `json:"requester"`
	Subject     string    `json:"subject"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Live        bool      `json:"live"`
}

func toDTO(sub subscription.Subscription, now time.Time) subscriptionDTO {
	return subscriptionDTO{
		Mode:        sub.Mode(),
		Kind:        sub.Kind.String(),
		Requester:   string(sub.Requester),
		Subject:     sub.Subject,
		Destination: string(sub.Destination),
		CreatedAt:   sub.CreatedAt,
		ExpiresAt:   sub.ExpiresAt,
		Live:        sub.IsLive(now),
	}
}

func (s *server) handlePresenceEvent(w http.ResponseWriter, r *http.Request) {
	var req presenceEventReq
	if !readJSONLimited(w, r, &req, maxBodyBytes) {
		return
	}
	kind, err := presence.ParseEventKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev := presence.Event{
		Kind:   kind,
		Entity: presence.Entity{ID: presence.EntityID(req.Entity), Name: req.EntityName},
		From:   presence.Room{ID: presence.RoomID(req.From)},
		To:     presence.Room{ID: presence.RoomID(req.To)},
		At:     time.Now(),
	}
	if kind == presence.EventLeft {
		ev.To = presence.Room{}
	}
	if kind == presence.EventJoined {
		ev.From = presence.Room{}
	}
	if err := ev.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logDebug(r.Context(), "presence event", "event", ev.String())
	if s.graph != nil {
		if err := s.graph.Apply(ev); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	out := s.engine.HandleEvent(r.Context(), ev)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "accepted",
		"event_id":  out.EventID,
		"notified":  out.Notified,
		"relocated": out.Relocated,
	})
}

func (s *server) handleWhere(w http.ResponseWriter, r *http.Request) {
	req := subscription.WhereRequest{
		Requester:   presence.EntityID(r.URL.Query().Get("requester")),
		Subject:     presence.EntityID(chi.URLParam(r, "entity")),
		Destination: presence.DestinationID(r.URL.Query().Get("destination")),
	}
	location, err := s.engine.Where(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"entity": string(req.Subject), "location": location})
}

func (s *server) handleNotify(w http.ResponseWriter, r *http.Request) {
	s.handleMember(w, r, s.engine.Notify)
}

func (s *server) handleFollow(w http.ResponseWriter, r *http.Request) {
	s.handleMember(w, r, s.engine.Follow)
}

func (s *server) handleMember(w http.ResponseWriter, r *http.Request, subscribe func(ctx context.Context, req subscription.MemberRequest) (subscription.Subscription, error)) {
	var req memberReq
	if !readJSONLimited(w, r, &req, maxBodyBytes) {
		return
	}
	d, err := duration.Parse(req.Duration, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := subscribe(r.Context(), subscription.MemberRequest{
		Requester:   presence.EntityID(req.Requester),
		Subject:     presence.EntityID(req.Subject),
		Destination: presence.DestinationID(req.Destination),
		Duration:    d,
		Active:      req.Active,
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(sub, time.Now()))
}

func (s *server) handleVCNotify(w http.ResponseWriter, r *http.Request) {
	var req roomReq
	if !readJSONLimited(w, r, &req, maxBodyBytes) {
		return
	}
	d, err := duration.Parse(req.Duration, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := s.engine.VCNotify(r.Context(), subscription.RoomRequest{
		Requester:   presence.EntityID(req.Requester),
		Room:        presence.RoomID(req.Room),
		Destination: presence.DestinationID(req.Destination),
		Duration:    d,
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(sub, time.Now()))
}

func (s *server) handleStopFollow(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.StopFollow(r.Context(), subscription.StopRequest{
		Requester:   presence.EntityID(r.URL.Query().Get("requester")),
		Subject:     presence.EntityID(chi.URLParam(r, "entity")),
		Destination: presence.DestinationID(r.URL.Query().Get("destination")),
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *server) handleStopVCNotify(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.StopRoom(r.Context(), subscription.RoomRequest{
		Requester:   presence.EntityID(r.URL.Query().Get("requester")),
		Room:        presence.RoomID(chi.URLParam(r, "room")),
		Destination: presence.DestinationID(r.URL.Query().Get("destination")),
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	subs := s.engine.Subscriptions()
	out := make([]subscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toDTO(sub, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": out})
}

func (s *server) handleInbox(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusNotFound, "inbox disabled")
		return
	}
	dest := presence.DestinationID(chi.URLParam(r, "destination"))
	var msgs []delivery.Message
	if r.URL.Query().Get("drain") == "true" {
		msgs = s.inbox.Drain(dest)
	} else {
		msgs = s.inbox.Messages(dest)
	}
	if msgs == nil {
		msgs = []delivery.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"destination": dest, "messages": msgs})
}

func (s *server) handleInboxAll(w http.ResponseWriter, _ *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusNotFound, "inbox disabled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"destinations": s.inbox.All()})
}

func (s *server) handleInvite(w http.ResponseWriter, r *http.Request) {
	if s.invites == nil {
		writeError(w, http.StatusNotFound, "invites disabled")
		return
	}
	inv, err := s.invites.Verify(chi.URLParam(r, "code"), r.URL.Query().Get("exp"), r.URL.Query().Get("sig"))
	switch {
	case errors.Is(err, invite.ErrUnknownCode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, invite.ErrInviteExpired):
		writeError(w, http.StatusGone, err.Error())
	case err != nil:
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"room":       inv.Room.ID,
			"name":       inv.Room.Name,
			"expires_at": inv.ExpiresAt,
		})
	}
}

// writeEngineError maps engine errors to HTTP statuses.
func (s *server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, subscription.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, subscription.ErrUnresolvedEntity):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, subscription.ErrLocationUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logError(r.Context(), "engine command failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func readJSONLimited(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := readJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
