// Package hosted provides a persistent store backed by a remote record API.
// It mirrors the snapshotting backends: transactions run against the
// in-memory store and the full state is pushed to the service afterwards.
// Requests are scoped by project id and API key credentials.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"realtycore/internal/infra/persistence/memory"
	"realtycore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Credential header names understood by the record service.
const (
	HeaderProjectID = "X-Project-ID"
	HeaderAPIKey    = "X-Api-Key"
)

// Config holds connection parameters for the record service.
type Config struct {
	BaseURL   string
	ProjectID string
	APIKey    string
	Client    *http.Client // optional; defaults to a 30s-timeout client
}

// Store persists state to the remote record service while reusing the
// in-memory implementation for transactions.
type Store struct {
	*memory.Store
	cfg    Config
	client *http.Client
	mu     sync.Mutex
}

var hostedBuckets = []string{"contacts", "properties", "deals", "tasks"}

// NewStore connects to the record service, hydrates local state from any
// existing snapshot, and returns the store.
func NewStore(ctx context.Context, cfg Config, engine *domain.RulesEngine) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("hosted store: base URL required")
	}
	if cfg.ProjectID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("hosted store: project id and api key required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("hosted store: parse base URL: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	s := &Store{Store: memory.NewStore(engine), cfg: cfg, client: client}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// RunInTransaction applies fn within a transaction, then pushes the snapshot
// to the record service. A failed push restores the prior in-memory state so
// readers never observe a commit that was not durably stored.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.ExportState()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		s.ImportState(prior)
		return res, pErr
	}
	return res, nil
}

func (s *Store) bucketURL(bucket string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/state/" + bucket
}

func (s *Store) do(req *http.Request) (*http.Response, error) {
	req.Header.Set(HeaderProjectID, s.cfg.ProjectID)
	req.Header.Set(HeaderAPIKey, s.cfg.APIKey)
	return s.client.Do(req)
}

func (s *Store) load(ctx context.Context) error {
	var snapshot memory.Snapshot
	targets := map[string]any{
		"contacts":   &snapshot.Contacts,
		"properties": &snapshot.Properties,
		"deals":      &snapshot.Deals,
		"tasks":      &snapshot.Tasks,
	}
	found := false
	for _, bucket := range hostedBuckets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.bucketURL(bucket), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		resp, err := s.do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", bucket, err)
		}
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch %s: unexpected status %s", bucket, resp.Status)
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", bucket, readErr)
		}
		if len(body) == 0 {
			continue
		}
		if err := json.Unmarshal(body, targets[bucket]); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		found = true
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	snapshot := s.ExportState()
	for _, bucket := range hostedBuckets {
		var data []byte
		var err error
		switch bucket {
		case "contacts":
			data, err = json.Marshal(snapshot.Contacts)
		case "properties":
			data, err = json.Marshal(snapshot.Properties)
		case "deals":
			data, err = json.Marshal(snapshot.Deals)
		case "tasks":
			data, err = json.Marshal(snapshot.Tasks)
		}
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.bucketURL(bucket), bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.do(req)
		if err != nil {
			return fmt.Errorf("push %s: %w", bucket, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("push %s: unexpected status %s", bucket, resp.Status)
		}
	}
	return nil
}
