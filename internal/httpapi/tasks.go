package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"realtycore/internal/query"
	"realtycore/pkg/domain"
)

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.svc.ListTasks(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	q := r.URL.Query()
	filter := query.TaskFilter{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
	}
	respondJSON(w, http.StatusOK, query.SortTasks(filter.Apply(tasks)))
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.svc.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var task domain.Task
	if !decodeBody(w, r, &task) {
		return
	}
	if strings.TrimSpace(task.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	created, err := a.svc.CreateTask(r.Context(), task)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := a.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	removed, err := a.svc.DeleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}
