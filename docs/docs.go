// Package docs отдаёт спецификацию HTTP API в формате OpenAPI.
// Файл openapi.json поддерживается вручную вместе с маршрутами.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPISpec []byte

// ServeOpenAPI обрабатывает GET /swagger/doc.json.
func ServeOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
