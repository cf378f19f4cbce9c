package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

func (s *server) logError(ctx context.Context, msg string, err error) {
	if err == nil || s.logger == nil {
		return
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		s.logger.Error("httpapi: "+msg, "req_id", reqID, "error", err)
		return
	}
	s.logger.Error("httpapi: "+msg, "error", err)
}

func (s *server) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		args = append(args, "req_id", reqID)
	}
	s.logger.Debug("httpapi: "+msg, args...)
}
