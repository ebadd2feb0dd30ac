package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"realtycore/internal/query"
	"realtycore/pkg/domain"
)

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.svc.ListContacts(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	filter := query.ContactFilter{
		Search: r.URL.Query().Get("search"),
		Type:   r.URL.Query().Get("type"),
	}
	respondJSON(w, http.StatusOK, filter.Apply(contacts))
}

func (a *API) getContact(w http.ResponseWriter, r *http.Request) {
	contact, err := a.svc.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (a *API) createContact(w http.ResponseWriter, r *http.Request) {
	var contact domain.Contact
	if !decodeBody(w, r, &contact) {
		return
	}
	if strings.TrimSpace(contact.Name) == "" ||
		strings.TrimSpace(contact.Email) == "" ||
		strings.TrimSpace(contact.Phone) == "" {
		respondError(w, http.StatusBadRequest, "name, email, and phone are required")
		return
	}
	created, err := a.svc.CreateContact(r.Context(), contact)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) updateContact(w http.ResponseWriter, r *http.Request) {
	var patch domain.ContactPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := a.svc.UpdateContact(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (a *API) deleteContact(w http.ResponseWriter, r *http.Request) {
	removed, err := a.svc.DeleteContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}
