// Package web serves the HTML surface of TaskKeeper: registration, login,
// the dashboard and the task pages. It owns the authorization gate: session
// validation and the per-request ownership checks both live here, in front
// of the stores, which perform no authorization of their own.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/session"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front of the application.
type Server struct {
	address   string
	logger    logging.Logger
	sessions  *session.Manager
	users     *users.Service
	tasks     *tasks.Service
	templates map[string]*template.Template
	router    *mux.Router
}

// NewServer builds the server and its route table.
func NewServer(address string, l logging.Logger, sm *session.Manager, us *users.Service, ts *tasks.Service) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:   address,
		logger:    l.With("module", "web_server"),
		sessions:  sm,
		users:     us,
		tasks:     ts,
		templates: templates,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)

	// register/login must be unauthenticated
	public := r.NewRoute().Subrouter()
	public.Use(s.preventAuthenticatedAccess)
	public.HandleFunc("/register", s.getRegister).Methods(http.MethodGet)
	public.HandleFunc("/register", s.postRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", s.getLogin).Methods(http.MethodGet)
	public.HandleFunc("/login", s.postLogin).Methods(http.MethodPost)

	private := r.NewRoute().Subrouter()
	private.Use(s.requireAuthenticated)
	private.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	private.HandleFunc("/tasks", s.handleTaskList).Methods(http.MethodGet)
	private.HandleFunc("/tasks/add", s.getTaskAdd).Methods(http.MethodGet)
	private.HandleFunc("/tasks/add", s.postTaskAdd).Methods(http.MethodPost)
	private.HandleFunc("/tasks/edit/{id}", s.getTaskEdit).Methods(http.MethodGet)
	private.HandleFunc("/tasks/edit/{id}", s.postTaskEdit).Methods(http.MethodPost, http.MethodPut)
	private.HandleFunc("/tasks/delete/{id}", s.postTaskDelete).Methods(http.MethodPost, http.MethodDelete)
	private.HandleFunc("/tasks/status/{id}", s.postTaskStatus).Methods(http.MethodPost)

	return r
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
