package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"invtrack/internal/imaging"
	"invtrack/internal/metrics"
	"invtrack/internal/model"
	"invtrack/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type itemRequest struct {
	Name            string `json:"name"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	ProjectCategory string `json:"project_category"`
	Description     string `json:"description"`
	Quantity        int    `json:"quantity"`
	Supplier        string `json:"supplier"`
	StorageLocation string `json:"storage_location"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

func (req *itemRequest) toModel() *model.Item {
	return &model.Item{
		Name:            req.Name,
		Model:           req.Model,
		SerialNumber:    req.SerialNumber,
		ProjectCategory: req.ProjectCategory,
		Description:     req.Description,
		Quantity:        req.Quantity,
		Supplier:        req.Supplier,
		StorageLocation: model.Location(req.StorageLocation),
		Status:          model.Status(req.Status),
		Notes:           req.Notes,
	}
}

// List handles GET /api/items. Supports status, location, category, and
// name (substring) filters for the presentation layer's search boxes.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := store.ListItems(r.Context(), h.DB, store.ListItemsOptions{
		Status:   model.Status(q.Get("status")),
		Location: model.Location(q.Get("location")),
		Category: q.Get("category"),
		Name:     q.Get("name"),
	})
	if err != nil {
		storeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.SerialNumber == "" {
		jsonError(w, http.StatusBadRequest, "name and serial_number required")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, req.toModel())
	if err != nil {
		storeError(w, err)
		return
	}

	metrics.ItemsCreatedTotal.Inc()
	claims := GetClaims(r.Context())
	slog.Info("item created", "user", claims.Username, "item", item.Name, "serial", item.SerialNumber)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Lookup handles GET /api/items/lookup?serial=...|name=... — the identity
// resolution step for callers holding only a human-entered reference.
func (h *ItemsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	serial := r.URL.Query().Get("serial")
	name := r.URL.Query().Get("name")

	var item *model.Item
	var err error
	switch {
	case serial != "":
		item, err = store.GetItemBySerial(r.Context(), h.DB, serial)
	case name != "":
		item, err = store.GetItemByName(r.Context(), h.DB, name)
	default:
		jsonError(w, http.StatusBadRequest, "serial or name required")
		return
	}
	if err != nil {
		storeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, req.toModel()); err != nil {
		storeError(w, err)
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. The item's movements go with it.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "user", claims.Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetMovements handles GET /api/items/{id}/movements.
func (h *ItemsHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, id, "")
	if err != nil {
		storeError(w, err)
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, processed.Data, processed.MIME); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Locations handles GET /api/locations. The vocabulary is closed; the
// presentation layer populates its dropdown from here.
func (h *ItemsHandler) Locations(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Locations())
}

// parseDate parses an optional RFC 3339 date from a request field.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
