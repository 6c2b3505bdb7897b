package welcome

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/welcome.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/welcome.html"))

type view struct {
	Title  string
	Routes []string
}

var routes = []string{
	"POST /users/{userId}/products",
	"GET /users/{userId}/products",
	"GET /products/{productId}",
	"PATCH /products/{productId}",
	"DELETE /products/{productId}",
}

type Handler struct {
	title string
	log   *slog.Logger
}

func NewHandler(title string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{title: title, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, view{Title: h.title, Routes: routes}); err != nil {
		h.log.Error("failed to render welcome page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
