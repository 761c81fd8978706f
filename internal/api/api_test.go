package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/bcrypt"

	"invtrack/internal/db"
	"invtrack/internal/metrics"
	"invtrack/internal/model"
	"invtrack/internal/store"
)

const testSecret = "test-jwt-secret"

// setupTestServer builds a router over a fresh in-memory database with an
// admin user seeded, and returns the handler plus a valid admin token.
func setupTestServer(t *testing.T) (http.Handler, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if _, err := store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin); err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	handler := NewRouter(database, testSecret)
	token := login(t, handler, "admin", "admin-password")
	return handler, database, token
}

func login(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed (%d): %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return resp.Token
}

// authRequest performs a request with a bearer token and a JSON body.
func authRequest(t *testing.T, handler http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	handler, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequestsRequireAuth(t *testing.T) {
	handler, _, _ := setupTestServer(t)

	rec := authRequest(t, handler, "", "GET", "/api/items", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = authRequest(t, handler, "garbage-token", "GET", "/api/items", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	handler, _, token := setupTestServer(t)

	rec := authRequest(t, handler, token, "POST", "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed (%d): %s", rec.Code, rec.Body.String())
	}

	rec = authRequest(t, handler, token, "GET", "/api/items", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestItemLifecycle(t *testing.T) {
	handler, _, token := setupTestServer(t)

	// Create.
	rec := authRequest(t, handler, token, "POST", "/api/items", map[string]any{
		"name":             "Router",
		"serial_number":    "SN-100",
		"quantity":         4,
		"storage_location": "Stores",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed (%d): %s", rec.Code, rec.Body.String())
	}
	var item model.Item
	json.Unmarshal(rec.Body.Bytes(), &item)
	if item.ID == 0 || item.Status != model.StatusActive {
		t.Errorf("unexpected created item: %+v", item)
	}

	// Duplicate serial conflicts.
	rec = authRequest(t, handler, token, "POST", "/api/items", map[string]any{
		"name": "Other", "serial_number": "SN-100", "storage_location": "Office",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate serial, got %d", rec.Code)
	}

	// Lookup by serial.
	rec = authRequest(t, handler, token, "GET", "/api/items/lookup?serial=SN-100", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("lookup failed (%d): %s", rec.Code, rec.Body.String())
	}

	// Update.
	rec = authRequest(t, handler, token, "PUT", "/api/items/1", map[string]any{
		"name": "Core Router", "quantity": 4, "storage_location": "Data Office",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed (%d): %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &item)
	if item.Name != "Core Router" || item.StorageLocation != model.LocationDataOffice {
		t.Errorf("update not applied: %+v", item)
	}

	// Delete, then 404.
	rec = authRequest(t, handler, token, "DELETE", "/api/items/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed (%d): %s", rec.Code, rec.Body.String())
	}
	rec = authRequest(t, handler, token, "GET", "/api/items/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestItemListFilters(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	store.CreateItem(ctx, database, &model.Item{
		Name: "Switch", SerialNumber: "SN-1", Quantity: 3,
		StorageLocation: model.LocationStores,
	})
	store.CreateItem(ctx, database, &model.Item{
		Name: "Camera", SerialNumber: "SN-2", Quantity: 1,
		StorageLocation: model.LocationOffice,
	})

	rec := authRequest(t, handler, token, "GET", "/api/items?location=Office", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed (%d): %s", rec.Code, rec.Body.String())
	}
	var items []model.Item
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 1 || items[0].Name != "Camera" {
		t.Errorf("expected only Camera at Office, got %v", items)
	}
}

func TestMovementFlow(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	item, err := store.CreateItem(ctx, database, &model.Item{
		Name: "Antenna", SerialNumber: "SN-1", Quantity: 10,
		StorageLocation: model.LocationStores,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	// Out movement mutates quantity and location.
	rec := authRequest(t, handler, token, "POST", "/api/movements", map[string]any{
		"item_id": item.ID, "movement_type": "out", "quantity": 4,
		"to_location": "Field Work",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("movement failed (%d): %s", rec.Code, rec.Body.String())
	}
	var result model.MovementResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Item.Quantity != 6 || result.Item.StorageLocation != model.LocationFieldWork {
		t.Errorf("unexpected item after out: %+v", result.Item)
	}

	// Overdraw is rejected and changes nothing.
	rec = authRequest(t, handler, token, "POST", "/api/movements", map[string]any{
		"item_id": item.ID, "movement_type": "out", "quantity": 20,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for overdraw, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "have 6, need 20") {
		t.Errorf("expected quantities in error, got %s", rec.Body.String())
	}

	// Transfer derives a new item.
	rec = authRequest(t, handler, token, "POST", "/api/movements", map[string]any{
		"item_id": item.ID, "movement_type": "transferred", "quantity": 2,
		"to_location": "Container", "to_project": "ProjectX",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer failed (%d): %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.DerivedItem == nil {
		t.Fatal("expected derived item in transfer result")
	}
	if !strings.HasPrefix(result.DerivedItem.SerialNumber, "SN-1-TR") {
		t.Errorf("expected derived serial prefix SN-1-TR, got %q", result.DerivedItem.SerialNumber)
	}

	// The ledger lists both applied movements, filterable by type.
	rec = authRequest(t, handler, token, "GET", "/api/movements?type=out", nil)
	var movements []model.Movement
	json.Unmarshal(rec.Body.Bytes(), &movements)
	if len(movements) != 1 {
		t.Errorf("expected 1 out movement, got %d", len(movements))
	}
}

func TestMovementStatusUpdatePropagates(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, &model.Item{
		Name: "Camera", SerialNumber: "SN-1", Quantity: 3,
		StorageLocation: model.LocationOffice,
	})
	result, err := store.ApplyMovement(ctx, database, &model.MovementRequest{
		ItemID: item.ID, Type: model.MovementOut, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("ApplyMovement: %v", err)
	}

	path := fmt.Sprintf("/api/movements/%d/status", result.Movement.ID)
	rec := authRequest(t, handler, token, "PUT", path, map[string]string{"status": "damaged"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update failed (%d): %s", rec.Code, rec.Body.String())
	}

	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Status != model.StatusDamaged {
		t.Errorf("expected item damaged after ledger edit, got %q", got.Status)
	}
}

func TestRoleEnforcement(t *testing.T) {
	handler, database, adminToken := setupTestServer(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("user-password"), bcrypt.MinCost)
	if _, err := store.CreateUser(ctx, database, "viewer", string(hash), model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	userToken := login(t, handler, "viewer", "user-password")

	// Plain users can read items but not create them.
	rec := authRequest(t, handler, userToken, "GET", "/api/items", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for read, got %d", rec.Code)
	}
	rec = authRequest(t, handler, userToken, "POST", "/api/items", map[string]any{
		"name": "Router", "serial_number": "SN-1", "storage_location": "Stores",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for item create, got %d", rec.Code)
	}

	// User management is admin only.
	rec = authRequest(t, handler, userToken, "GET", "/api/users", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for user listing, got %d", rec.Code)
	}
	rec = authRequest(t, handler, adminToken, "GET", "/api/users", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin user listing, got %d", rec.Code)
	}

	// Movements are open to all roles.
	item, _ := store.CreateItem(ctx, database, &model.Item{
		Name: "Cable", SerialNumber: "SN-2", Quantity: 5,
		StorageLocation: model.LocationStores,
	})
	rec = authRequest(t, handler, userToken, "POST", "/api/movements", map[string]any{
		"item_id": item.ID, "movement_type": "in", "quantity": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 for user movement, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChangePassword(t *testing.T) {
	handler, _, token := setupTestServer(t)

	rec := authRequest(t, handler, token, "PUT", "/api/auth/password", map[string]string{
		"current_password": "wrong",
		"new_password":     "brand-new-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", rec.Code)
	}

	rec = authRequest(t, handler, token, "PUT", "/api/auth/password", map[string]string{
		"current_password": "admin-password",
		"new_password":     "brand-new-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("password change failed (%d): %s", rec.Code, rec.Body.String())
	}

	// The new password logs in.
	login(t, handler, "admin", "brand-new-password")
}

func TestLocationsEndpoint(t *testing.T) {
	handler, _, token := setupTestServer(t)

	rec := authRequest(t, handler, token, "GET", "/api/locations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("locations failed (%d): %s", rec.Code, rec.Body.String())
	}
	var locations []string
	json.Unmarshal(rec.Body.Bytes(), &locations)
	if len(locations) != 5 {
		t.Errorf("expected 5 locations, got %v", locations)
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	store.CreateItem(ctx, database, &model.Item{
		Name: "Cable", SerialNumber: "SN-1", Quantity: 2,
		StorageLocation: model.LocationStores,
	})

	rec := authRequest(t, handler, token, "GET", "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed (%d): %s", rec.Code, rec.Body.String())
	}
	var stats store.Stats
	json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalItems != 1 || stats.LowStockItems != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReportExport(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	store.CreateItem(ctx, database, &model.Item{
		Name: "Cable", SerialNumber: "SN-1", Quantity: 2,
		StorageLocation: model.LocationStores,
	})

	rec := authRequest(t, handler, token, "GET", "/api/reports/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed (%d): %s", rec.Code, rec.Body.String())
	}
	ct := rec.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("expected attachment disposition, got %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Error("expected workbook bytes in response")
	}
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	handler, database, token := setupTestServer(t)
	ctx := context.Background()

	store.CreateItem(ctx, database, &model.Item{
		Name: "Cable", SerialNumber: "SN-1", Quantity: 2,
		StorageLocation: model.LocationStores,
	})
	store.CreateItem(ctx, database, &model.Item{
		Name: "Switch", SerialNumber: "SN-2", Quantity: 1,
		StorageLocation: model.LocationStores,
	})

	// Different item ids must land in the same metric series, labeled with
	// the route pattern instead of the raw path.
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/items/{id}", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/items/1", "/api/items/2"} {
		if rec := authRequest(t, handler, token, "GET", path, nil); rec.Code != http.StatusOK {
			t.Fatalf("GET %s failed (%d): %s", path, rec.Code, rec.Body.String())
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 requests counted for the item route, got %v", got)
	}
}

func TestUserManagement(t *testing.T) {
	handler, _, token := setupTestServer(t)

	// Create a manager.
	rec := authRequest(t, handler, token, "POST", "/api/users", map[string]string{
		"username": "mallory", "password": "long-password", "role": model.RoleManager,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("user create failed (%d): %s", rec.Code, rec.Body.String())
	}

	// Reusing an active username conflicts.
	rec = authRequest(t, handler, token, "POST", "/api/users", map[string]string{
		"username": "mallory", "password": "other-password", "role": model.RoleUser,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", rec.Code)
	}

	// Passwords below the minimum are rejected.
	rec = authRequest(t, handler, token, "POST", "/api/users", map[string]string{
		"username": "shorty", "password": "short", "role": model.RoleUser,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", rec.Code)
	}

	rec = authRequest(t, handler, token, "GET", "/api/users", nil)
	var users []model.User
	json.Unmarshal(rec.Body.Bytes(), &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}
