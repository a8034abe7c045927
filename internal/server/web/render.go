package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pages lists the content templates, each rendered inside layout.html.
var pages = []string{"register", "login", "dashboard", "tasks", "task_form"}

// viewData is the data handed to every page template. Handlers fill only the
// fields their page uses.
type viewData struct {
	User   *session.Identity
	Error  string
	Tasks  []*models.Task
	Task   *models.Task
	Action string
	Counts *models.TaskCounts
}

func parseTemplates() (map[string]*template.Template, error) {
	set := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("template parse error: %w", err)
		}
		set[page] = t
	}
	return set, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	t, ok := s.templates[page]
	if !ok {
		s.logger.Error(r.Context(), "unknown page template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data.User == nil {
		data.User = identityFromContext(r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error(r.Context(), "template execute error", "page", page, "error", err.Error())
	}
}
