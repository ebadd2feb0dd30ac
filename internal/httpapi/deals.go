package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"realtycore/pkg/domain"
)

func (a *API) listDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := a.svc.ListDeals(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (a *API) getDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := a.svc.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (a *API) createDeal(w http.ResponseWriter, r *http.Request) {
	var deal domain.Deal
	if !decodeBody(w, r, &deal) {
		return
	}
	if strings.TrimSpace(deal.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	created, err := a.svc.CreateDeal(r.Context(), deal)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) updateDeal(w http.ResponseWriter, r *http.Request) {
	var patch domain.DealPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := a.svc.UpdateDeal(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (a *API) deleteDeal(w http.ResponseWriter, r *http.Request) {
	removed, err := a.svc.DeleteDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}

type moveDealRequest struct {
	Stage domain.DealStage `json:"stage"`
}

type moveDealResponse struct {
	Moved bool `json:"moved"`
}

// moveDeal is the drop target for the pipeline board: the deal moves to the
// requested stage, or the request is a quiet no-op when the deal is gone or
// already there.
func (a *API) moveDeal(w http.ResponseWriter, r *http.Request) {
	var req moveDealRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Stage == "" {
		respondError(w, http.StatusBadRequest, "stage is required")
		return
	}
	moved, err := a.svc.MoveDeal(r.Context(), chi.URLParam(r, "id"), req.Stage)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moveDealResponse{Moved: moved})
}

type pipelineBoardResponse struct {
	Stages  []domain.DealStage                 `json:"stages"`
	Columns map[domain.DealStage][]domain.Deal `json:"columns"`
}

func (a *API) pipelineBoard(w http.ResponseWriter, r *http.Request) {
	grouped, err := a.svc.DealsByStage(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pipelineBoardResponse{
		Stages:  a.svc.Pipeline().Stages(),
		Columns: grouped,
	})
}
