package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Credential header names for the state endpoints.
const (
	HeaderProjectID = "X-Project-ID"
	HeaderAPIKey    = "X-Api-Key"
)

var stateBuckets = map[string]bool{
	"contacts":   true,
	"properties": true,
	"deals":      true,
	"tasks":      true,
}

// StateStore holds raw snapshot payloads per bucket for remote snapshot
// clients. Access is scoped by project id and API key.
type StateStore struct {
	projectID string
	apiKey    string

	mu      sync.RWMutex
	buckets map[string]json.RawMessage
}

// NewStateStore creates a state store guarded by the given credentials.
func NewStateStore(projectID, apiKey string) *StateStore {
	return &StateStore{
		projectID: projectID,
		apiKey:    apiKey,
		buckets:   make(map[string]json.RawMessage),
	}
}

func (s *StateStore) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		project := r.Header.Get(HeaderProjectID)
		key := r.Header.Get(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(project), []byte(s.projectID)) != 1 ||
			subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *StateStore) getBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !stateBuckets[bucket] {
		respondError(w, http.StatusBadRequest, "unknown bucket")
		return
	}
	s.mu.RLock()
	payload, ok := s.buckets[bucket]
	s.mu.RUnlock()
	if !ok {
		respondError(w, http.StatusNotFound, "bucket is empty")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *StateStore) putBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !stateBuckets[bucket] {
		respondError(w, http.StatusBadRequest, "unknown bucket")
		return
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body")
		return
	}
	if !json.Valid(payload) {
		respondError(w, http.StatusBadRequest, "payload must be valid JSON")
		return
	}
	s.mu.Lock()
	s.buckets[bucket] = payload
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
