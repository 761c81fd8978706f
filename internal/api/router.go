package api

import (
	"database/sql"
	"net/http"

	"invtrack/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	movementsHandler := &MovementsHandler{DB: db}
	statsHandler := &StatsHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/lookup", authMW(http.HandlerFunc(itemsHandler.Lookup)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("GET /api/items/{id}/movements", authMW(http.HandlerFunc(itemsHandler.GetMovements)))
	mux.Handle("PUT /api/items/{id}/image", authMW(requireManager(http.HandlerFunc(itemsHandler.UploadImage))))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Movements (all roles).
	mux.Handle("POST /api/movements", authMW(http.HandlerFunc(movementsHandler.Create)))
	mux.Handle("GET /api/movements", authMW(http.HandlerFunc(movementsHandler.List)))
	mux.Handle("GET /api/movements/{id}", authMW(http.HandlerFunc(movementsHandler.Get)))
	mux.Handle("PUT /api/movements/{id}/status", authMW(requireManager(http.HandlerFunc(movementsHandler.UpdateStatus))))

	// Vocabulary, dashboard, reporting.
	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(itemsHandler.Locations)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(statsHandler.Get)))
	mux.Handle("GET /api/reports/export", authMW(http.HandlerFunc(reportsHandler.Export)))

	// Logging and metrics wrap the route table here, where the matched
	// pattern can be resolved for the metric labels.
	return LoggingMiddleware(mux)
}
