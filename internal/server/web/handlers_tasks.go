package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)

	list, err := s.tasks.List(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error(r.Context(), "task list error", "error", err.Error())
		http.Error(w, "Error loading tasks", http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, "tasks", viewData{Tasks: list})
}

func (s *Server) getTaskAdd(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "task_form", viewData{Action: "/tasks/add"})
}

func (s *Server) postTaskAdd(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r)
	form := taskFormFromRequest(r)

	if _, err := s.tasks.Create(r.Context(), identity.UserID, form); err != nil {
		msg := "Failed to add task."
		if errors.Is(err, common.ErrValidation) {
			msg = validationMessage(err)
		}
		s.render(w, r, http.StatusOK, "task_form", viewData{
			Action: "/tasks/add",
			Task:   taskFromForm("", form),
			Error:  msg,
		})
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) getTaskEdit(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "task_form", viewData{
		Action: "/tasks/edit/" + task.ID,
		Task:   task,
	})
}

func (s *Server) postTaskEdit(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	form := taskFormFromRequest(r)

	if err := s.tasks.Update(r.Context(), task, form); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// deleted between load and submit
			http.Redirect(w, r, "/tasks", http.StatusSeeOther)
			return
		}
		msg := "Failed to update task."
		if errors.Is(err, common.ErrValidation) {
			msg = validationMessage(err)
		}
		s.render(w, r, http.StatusOK, "task_form", viewData{
			Action: "/tasks/edit/" + task.ID,
			Task:   taskFromForm(task.ID, form),
			Error:  msg,
		})
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) postTaskDelete(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	if err := s.tasks.Delete(r.Context(), task.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(r.Context(), "task delete error", "error", err.Error())
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) postTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	if err := s.tasks.ToggleStatus(r.Context(), task); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(r.Context(), "task status error", "error", err.Error())
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// ownedTask loads the task named in the route and checks it against the
// session identity. The check runs against the live record on every request,
// so a task deleted or reassigned after page load is re-validated at submit
// time. A missing task and someone else's task get the same silent redirect
// to the list; neither outcome discloses whether the task exists.
func (s *Server) ownedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	identity := identityFromContext(r)
	id := mux.Vars(r)["id"]

	task, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(r.Context(), "task load error", "error", err.Error())
		}
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return nil, false
	}
	if task.OwnerID != identity.UserID {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return nil, false
	}
	return task, true
}

func taskFormFromRequest(r *http.Request) tasks.Form {
	_ = r.ParseForm()
	return tasks.Form{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		DueDate:     r.PostFormValue("dueDate"),
		Status:      r.PostFormValue("status"),
	}
}

// taskFromForm rebuilds a Task from submitted values so the form can be
// re-rendered with what the user typed.
func taskFromForm(id string, f tasks.Form) *models.Task {
	task := &models.Task{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
	}
	if f.DueDate != "" {
		if parsed, err := time.Parse("2006-01-02", f.DueDate); err == nil {
			task.DueDate = &parsed
		}
	}
	return task
}
