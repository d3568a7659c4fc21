// Package frontend serves the embedded single-page chat UI.
package frontend

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed dist
var embeddedFiles embed.FS

// RegisterRoutes serves the embedded UI at the web root. API routes are
// registered first, so they take precedence over the static handler.
func RegisterRoutes(e *echo.Echo) {
	dist, err := fs.Sub(embeddedFiles, "dist")
	if err != nil {
		// The dist directory is embedded at build time; this cannot
		// fail in a correctly built binary.
		panic(err)
	}
	e.GET("/*", echo.WrapHandler(http.FileServer(http.FS(dist))))
}
