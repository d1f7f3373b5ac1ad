package taxonomy

import (
	"log/slog"

	"kinship/internal/taxonomy/handler"
	"kinship/internal/taxonomy/service"
)

// Service exposes taxonomy administration and dropdown lookups.
type Service = service.Service

// Handler wires HTTP endpoints to the taxonomy service.
type Handler = handler.Handler

// NewService constructs the taxonomy service.
var NewService = service.New

// NewHandler constructs an HTTP handler for taxonomy routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
