package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/session"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.sessions.Validate(r); err == nil && claims.Identity() != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) getRegister(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", viewData{})
}

func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "register", viewData{Error: "Registration failed."})
		return
	}

	_, err := s.users.Register(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		s.render(w, r, http.StatusOK, "register", viewData{Error: registerMessage(err)})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) getLogin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", viewData{})
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login", viewData{Error: "Login failed"})
		return
	}

	user, err := s.users.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			s.render(w, r, http.StatusOK, "login", viewData{Error: "Email and password are required"})
		case errors.Is(err, common.ErrInvalidCredentials):
			s.render(w, r, http.StatusOK, "login", viewData{Error: "Invalid credentials"})
		default:
			s.logger.Error(r.Context(), "login error", "error", err.Error())
			s.render(w, r, http.StatusOK, "login", viewData{Error: "Login failed"})
		}
		return
	}

	// A pre-login anonymous session may carry the URL the user originally
	// asked for.
	target := "/dashboard"
	if claims, err := s.sessions.Validate(r); err == nil && claims.RedirectTo != "" {
		target = claims.RedirectTo
	}

	identity := &session.Identity{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	if err := s.sessions.Issue(w, identity); err != nil {
		s.logger.Error(r.Context(), "session issue error", "error", err.Error())
		s.render(w, r, http.StatusOK, "login", viewData{Error: "Login failed"})
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)

	counts, err := s.tasks.Counts(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error(r.Context(), "dashboard error", "error", err.Error())
		http.Error(w, "Error loading dashboard", http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, "dashboard", viewData{Counts: counts})
}

func registerMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateIdentity):
		return "Username or Email already exists"
	case errors.Is(err, common.ErrValidation):
		return validationMessage(err)
	default:
		return "Registration failed."
	}
}

// validationMessage extracts the human part of a wrapped ErrValidation,
// e.g. "validation error: title is required" -> "Title is required".
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
