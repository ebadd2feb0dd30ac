// Package httpapi exposes the CRM core over a JSON HTTP API. Routes cover
// CRUD for the four collections, the pipeline board, the dashboard summary,
// property media, and the credential-scoped state endpoints consumed by
// remote snapshot clients.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"realtycore/internal/core"
	"realtycore/pkg/domain"
)

// API bundles the service facade with the HTTP handlers.
type API struct {
	svc   *core.Service
	state *StateStore
}

// New constructs the API. A nil state store disables the /state endpoints.
func New(svc *core.Service, state *StateStore) *API {
	return &API{svc: svc, state: state}
}

// Router assembles the chi route table.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", a.listContacts)
			r.Post("/", a.createContact)
			r.Get("/{id}", a.getContact)
			r.Put("/{id}", a.updateContact)
			r.Patch("/{id}", a.updateContact)
			r.Delete("/{id}", a.deleteContact)
		})
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", a.listProperties)
			r.Post("/", a.createProperty)
			r.Get("/{id}", a.getProperty)
			r.Put("/{id}", a.updateProperty)
			r.Patch("/{id}", a.updateProperty)
			r.Delete("/{id}", a.deleteProperty)
			r.Post("/{id}/images", a.attachPropertyImage)
			r.Get("/{id}/images", a.listPropertyImages)
		})
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", a.listDeals)
			r.Post("/", a.createDeal)
			r.Get("/{id}", a.getDeal)
			r.Put("/{id}", a.updateDeal)
			r.Patch("/{id}", a.updateDeal)
			r.Delete("/{id}", a.deleteDeal)
			r.Post("/{id}/move", a.moveDeal)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", a.listTasks)
			r.Post("/", a.createTask)
			r.Get("/{id}", a.getTask)
			r.Put("/{id}", a.updateTask)
			r.Patch("/{id}", a.updateTask)
			r.Delete("/{id}", a.deleteTask)
		})
		r.Get("/pipeline", a.pipelineBoard)
		r.Get("/dashboard", a.dashboard)
	})

	if a.state != nil {
		r.Route("/state", func(r chi.Router) {
			r.Use(a.state.authenticate)
			r.Get("/{bucket}", a.state.getBucket)
			r.Put("/{bucket}", a.state.putBucket)
		})
	}

	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondDomainError maps domain failures to HTTP statuses: missing records
// to 404, rule violations to 422, everything else to 500.
func respondDomainError(w http.ResponseWriter, err error) {
	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	var violation domain.RuleViolationError
	if errors.As(err, &violation) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
