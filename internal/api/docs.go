package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// Swagger UI reads JSON, so the embedded YAML is converted once.
var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi.yaml: %w", err)
	}
	return json.Marshal(doc)
})

// mountDocs serves the API description and Swagger UI under /api-docs.
func mountDocs(r chi.Router, logger *zap.Logger) {
	r.Get("/api-docs/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openAPIYAML) //nolint:errcheck
	})
	r.Get("/api-docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := openAPIJSON()
		if err != nil {
			logger.Error("Failed to render OpenAPI document", zap.Error(err))
			http.Error(w, "API description unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(doc) //nolint:errcheck
	})

	index := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api-docs/index.html", http.StatusMovedPermanently)
	}
	r.Get("/api-docs", index)
	r.Get("/api-docs/", index)
	r.Get("/api-docs/*", httpSwagger.Handler(httpSwagger.URL("/api-docs/openapi.json")))
}
