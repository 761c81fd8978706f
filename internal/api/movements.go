package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"invtrack/internal/metrics"
	"invtrack/internal/model"
	"invtrack/internal/store"
)

// MovementsHandler handles stock movement endpoints.
type MovementsHandler struct {
	DB *sql.DB
}

type createMovementRequest struct {
	ItemID       int64  `json:"item_id"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	FromProject  string `json:"from_project"`
	ToProject    string `json:"to_project"`
	Status       string `json:"status"`
	Date         string `json:"date"` // RFC 3339, defaults to now
	Notes        string `json:"notes"`
}

type updateMovementStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/movements: the submission path through the
// movement engine.
func (h *MovementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	movedAt, err := parseDate(req.Date)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid date (want RFC 3339)")
		return
	}

	result, err := store.ApplyMovement(r.Context(), h.DB, &model.MovementRequest{
		ItemID:       req.ItemID,
		Type:         model.MovementType(req.MovementType),
		Quantity:     req.Quantity,
		FromLocation: model.Location(req.FromLocation),
		ToLocation:   model.Location(req.ToLocation),
		FromProject:  req.FromProject,
		ToProject:    req.ToProject,
		Status:       model.Status(req.Status),
		MovedAt:      movedAt,
		Notes:        req.Notes,
	})
	if err != nil {
		metrics.MovementsRejectedTotal.Inc()
		storeError(w, err)
		return
	}

	metrics.RecordMovement(string(result.Movement.MovementType))
	if result.DerivedItem != nil {
		metrics.ItemsCreatedTotal.Inc()
	}

	claims := GetClaims(r.Context())
	slog.Info("movement applied", "user", claims.Username,
		"item", result.Item.Name, "type", result.Movement.MovementType,
		"quantity", result.Movement.Quantity)
	jsonResponse(w, http.StatusCreated, result)
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if v := r.URL.Query().Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		itemID = id
	}

	movementType := model.MovementType(r.URL.Query().Get("type"))
	if movementType != "" && !movementType.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid movement type")
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, itemID, movementType)
	if err != nil {
		storeError(w, err)
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}

// Get handles GET /api/movements/{id}.
func (h *MovementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	movement, err := store.GetMovement(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if movement == nil {
		jsonError(w, http.StatusNotFound, "movement not found")
		return
	}
	jsonResponse(w, http.StatusOK, movement)
}

// UpdateStatus handles PUT /api/movements/{id}/status — the only permitted
// post-hoc edit of a ledger entry.
func (h *MovementsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req updateMovementStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	movement, err := store.UpdateMovementStatus(r.Context(), h.DB, id, model.Status(req.Status))
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("movement status updated", "user", claims.Username,
		"movement_id", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, movement)
}
