package server

import (
	_ "embed"
	"net/http"
)

// openAPIDocument is the OpenAPI 3 description of the /v1 API
//
//go:embed openapi.yaml
var openAPIDocument []byte

// docsPage renders openAPIDocument with Redoc
const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>nbprates API: NBP exchange rates</title>
  </head>
  <body>
    <redoc spec-url="/openapi.yaml" hide-download-button></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`

// OpenAPI serves the embedded API description
func (s *Server) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	_, _ = w.Write(openAPIDocument) //nolint:errcheck // Fine to ignore
}

// Redoc serves the human-readable API docs
func (s *Server) Redoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, _ = w.Write([]byte(docsPage)) //nolint:errcheck // Fine to ignore
}
