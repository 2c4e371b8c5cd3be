package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"dwelling-dashboard/pkg/logging"
)

const (
	docsPath    = "/api/docs"
	openAPIPath = "/api/docs/openapi.json"
	swaggerDist = "https://unpkg.com/swagger-ui-dist@5.10.0"
)

// docsPage is the data rendered into docsTemplate
type docsPage struct {
	Title   string
	SpecURL string
	Dist    string
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Dist}}/swagger-ui.css">
</head>
<body style="margin:0">
<div id="docs"></div>
<script src="{{.Dist}}/swagger-ui-bundle.js"></script>
<script>
window.onload = function() {
  window.ui = SwaggerUIBundle({url: {{.SpecURL}}, dom_id: "#docs", deepLinking: true});
};
</script>
</body>
</html>
`))

// SwaggerUI handles GET /api/docs with an interactive view of the OpenAPI document
func (h *DashboardHandler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	page := docsPage{
		Title:   "Dashboard API",
		SpecURL: openAPIPath,
		Dist:    swaggerDist,
	}
	if h.profile.Name != "" {
		page.Title = h.profile.Name + " dashboard API"
	}

	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, page); err != nil {
		h.logger.Error(r.Context(), "[API_DOCS_ERROR] Failed to render docs page", logging.Fields{
			"title": page.Title,
		}, err)
		h.sendError(w, r, docsPath, "failed to render docs page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn(r.Context(), "[API_DOCS_WRITE] Docs page not fully written", logging.Fields{
			"error": err.Error(),
		})
	}
}
