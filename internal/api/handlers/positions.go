package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/tradestats/internal/ledger"
	"github.com/wonny/tradestats/internal/positions"
	"github.com/wonny/tradestats/pkg/logger"
)

// PositionService 미청산 포지션 평가 (*positions.Service)
type PositionService interface {
	Snapshot(ctx context.Context) (*positions.Snapshot, error)
}

// PositionHandler handles open position endpoints
type PositionHandler struct {
	service PositionService
	logger  *logger.Logger
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(service PositionService, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		service: service,
		logger:  log,
	}
}

// GetPositions returns mark-to-market metrics, portfolio risk and alerts
// GET /api/positions
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if errors.Is(err, ledger.ErrNoLedger) {
		respondError(w, http.StatusServiceUnavailable, "No trade ledger configured")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to evaluate positions")
		respondError(w, http.StatusInternalServerError, "Failed to evaluate positions")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}
