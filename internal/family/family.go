package family

import (
	"log/slog"

	"kinship/internal/family/handler"
	"kinship/internal/family/service"
)

// Service owns the family graph: member, spouse, children, ancestors.
type Service = service.Service

// Handler serves the per-section reads of the family graph.
type Handler = handler.Handler

// NewService constructs the family service.
var NewService = service.New

// NewHandler constructs an HTTP handler for the section reads.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
