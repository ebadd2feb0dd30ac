package httpapi

import "net/http"

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.Dashboard(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
