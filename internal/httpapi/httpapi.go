// Package httpapi exposes the tracker over HTTP: a webhook for presence
// events, the tracker commands, and read-only views of the registry and the
// delivery inbox.
package httpapi

import (
	"log/slog"

	"github.com/roomwatch/roomwatch-go/pkg/delivery"
	"github.com/roomwatch/roomwatch-go/pkg/invite"
	"github.com/roomwatch/roomwatch-go/pkg/presence"
	"github.com/roomwatch/roomwatch-go/pkg/subscription"
)

// Deps are the components the API serves.
type Deps struct {
	Engine *subscription.Engine

	// Graph receives presence events when set, and forwards them to the
	// engine through its handler. Without a graph events go to the engine
	// directly.
	Graph *presence.Graph

	// Inbox backs GET /v1/inbox. Optional.
	Inbox *delivery.Inbox

	// Invites backs GET /invite/{code}. Optional.
	Invites *invite.Service

	Logger *slog.Logger
}
