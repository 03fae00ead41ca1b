// Package api wires the HTTP surface onto the drive and auth services.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rohits-web03/cloudvault/docs"
	"github.com/rohits-web03/cloudvault/internal/api/handlers"
	"github.com/rohits-web03/cloudvault/internal/api/middleware"
)

type RouterDeps struct {
	Auth    *handlers.AuthHandler
	Folders *handlers.FolderHandler
	Files   *handlers.FileHandler
	Gate    middleware.Resolver
	Cors    cors.Options
	Logger  *slog.Logger
}

func SetupRouter(deps RouterDeps) http.Handler {
	mainMux := http.NewServeMux()
	protect := middleware.Auth(deps.Gate)

	// ---------- PUBLIC ROUTES ----------
	public := map[string]http.HandlerFunc{
		"GET /health": health,
		"GET /docs/":  httpSwagger.WrapHandler,

		"POST /api/v1/auth/sign-up":        deps.Auth.Register,
		"POST /api/v1/auth/login":          deps.Auth.Login,
		"POST /api/v1/auth/logout":         deps.Auth.Logout,
		"GET /api/v1/auth/google/login":    deps.Auth.GoogleLogin,
		"GET /api/v1/auth/google/callback": deps.Auth.GoogleCallback,
	}
	for pattern, handler := range public {
		mainMux.HandleFunc(pattern, handler)
	}

	// ---------- PROTECTED ROUTES ----------
	protected := map[string]http.HandlerFunc{
		"GET /api/v1/auth/me": deps.Auth.Me,

		"POST /api/v1/folders":        deps.Folders.Create,
		"GET /api/v1/folders/{id}":    deps.Folders.Get,
		"PUT /api/v1/folders/{id}":    deps.Folders.Rename,
		"DELETE /api/v1/folders/{id}": deps.Folders.Delete,

		"POST /api/v1/files/upload":       deps.Files.Upload,
		"GET /api/v1/files":               deps.Files.List,
		"GET /api/v1/files/download/{id}": deps.Files.Download,
		"GET /api/v1/files/{id}":          deps.Files.Get,
		"DELETE /api/v1/files/{id}":       deps.Files.Delete,
	}
	for pattern, handler := range protected {
		mainMux.Handle(pattern, protect(handler))
	}

	deps.Logger.Info("router initialized", "public", len(public), "protected", len(protected))
	handler := cors.New(deps.Cors).Handler(mainMux)
	handler = middleware.Logger(deps.Logger)(handler)
	return handler
}

func health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
