package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"realtycore/internal/blob"
	"realtycore/internal/query"
	"realtycore/pkg/domain"
)

func (a *API) listProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := a.svc.ListProperties(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	q := r.URL.Query()
	filter := query.PropertyFilter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
	}
	if raw := q.Get("status"); raw != "" {
		filter.Statuses = strings.Split(raw, ",")
	}
	respondJSON(w, http.StatusOK, filter.Apply(properties))
}

func (a *API) getProperty(w http.ResponseWriter, r *http.Request) {
	property, err := a.svc.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

func (a *API) createProperty(w http.ResponseWriter, r *http.Request) {
	var property domain.Property
	if !decodeBody(w, r, &property) {
		return
	}
	if strings.TrimSpace(property.Address) == "" {
		respondError(w, http.StatusBadRequest, "address is required")
		return
	}
	if property.Price < 0 {
		respondError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	created, err := a.svc.CreateProperty(r.Context(), property)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) updateProperty(w http.ResponseWriter, r *http.Request) {
	var patch domain.PropertyPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := a.svc.UpdateProperty(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (a *API) deleteProperty(w http.ResponseWriter, r *http.Request) {
	removed, err := a.svc.DeleteProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}

type attachImageResponse struct {
	Property domain.Property `json:"property"`
	Image    blob.Info       `json:"image"`
}

func (a *API) attachPropertyImage(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		respondError(w, http.StatusBadRequest, "filename query parameter required")
		return
	}
	property, info, err := a.svc.AttachPropertyImage(r.Context(), chi.URLParam(r, "id"), filename, r.Body, blob.PutOptions{
		ContentType: r.Header.Get("Content-Type"),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, attachImageResponse{Property: property, Image: info})
}

func (a *API) listPropertyImages(w http.ResponseWriter, r *http.Request) {
	infos, err := a.svc.ListPropertyImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, infos)
}
