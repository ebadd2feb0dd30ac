package hosted

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"realtycore/pkg/domain"
)

type fakeRecordService struct {
	mu       sync.Mutex
	buckets  map[string][]byte
	project  string
	key      string
	failPuts bool
}

func (f *fakeRecordService) setFailPuts(fail bool) {
	f.mu.Lock()
	f.failPuts = fail
	f.mu.Unlock()
}

func newFakeRecordService(project, key string) *fakeRecordService {
	return &fakeRecordService{buckets: make(map[string][]byte), project: project, key: key}
}

func (f *fakeRecordService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(HeaderProjectID) != f.project || r.Header.Get(HeaderAPIKey) != f.key {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	bucket := strings.TrimPrefix(r.URL.Path, "/state/")
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		payload, ok := f.buckets[bucket]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(payload)
	case http.MethodPut:
		if f.failPuts {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.buckets[bucket] = body
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHostedStoreRequiresCredentials(t *testing.T) {
	if _, err := NewStore(context.Background(), Config{BaseURL: "http://example.com"}, nil); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
	if _, err := NewStore(context.Background(), Config{ProjectID: "p", APIKey: "k"}, nil); err == nil {
		t.Fatalf("expected error for missing base URL")
	}
}

func TestHostedStorePushesSnapshots(t *testing.T) {
	svc := newFakeRecordService("proj-1", "secret")
	server := httptest.NewServer(svc)
	defer server.Close()

	ctx := context.Background()
	store, err := NewStore(ctx, Config{BaseURL: server.URL, ProjectID: "proj-1", APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	var contact domain.Contact
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		contact, err = tx.CreateContact(domain.Contact{Name: "Ana", Email: "a@example.com", Phone: "555-0100"})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	svc.mu.Lock()
	payload := svc.buckets["contacts"]
	svc.mu.Unlock()
	var pushed []domain.Contact
	if err := json.Unmarshal(payload, &pushed); err != nil {
		t.Fatalf("decode pushed snapshot: %v", err)
	}
	if len(pushed) != 1 || pushed[0].ID != contact.ID {
		t.Fatalf("pushed snapshot wrong: %+v", pushed)
	}
}

func TestHostedStoreRollsBackWhenPushFails(t *testing.T) {
	svc := newFakeRecordService("proj-1", "secret")
	server := httptest.NewServer(svc)
	defer server.Close()
	ctx := context.Background()

	store, err := NewStore(ctx, Config{BaseURL: server.URL, ProjectID: "proj-1", APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var deal domain.Deal
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		deal, err = tx.CreateDeal(domain.Deal{Title: "Oak St", Value: 100})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc.setFailPuts(true)
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateDeal(deal.ID, func(d *domain.Deal) error {
			d.Stage = "offer"
			return nil
		})
		return err
	})
	if err == nil {
		t.Fatalf("expected push failure to surface")
	}

	got, ok := store.GetDeal(deal.ID)
	if !ok {
		t.Fatalf("deal missing after failed push")
	}
	if got.Stage != deal.Stage {
		t.Fatalf("failed push left visible stage %s, want %s", got.Stage, deal.Stage)
	}

	svc.setFailPuts(false)
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateDeal(deal.ID, func(d *domain.Deal) error {
			d.Stage = "offer"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if got, _ := store.GetDeal(deal.ID); got.Stage != "offer" {
		t.Fatalf("retry did not apply, stage %s", got.Stage)
	}
}

func TestHostedStoreHydratesFromRemoteState(t *testing.T) {
	svc := newFakeRecordService("proj-1", "secret")
	server := httptest.NewServer(svc)
	defer server.Close()
	ctx := context.Background()

	seed, err := NewStore(ctx, Config{BaseURL: server.URL, ProjectID: "proj-1", APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("open seed store: %v", err)
	}
	var deal domain.Deal
	_, err = seed.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		deal, err = tx.CreateDeal(domain.Deal{Title: "Oak St", Value: 100})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	fresh, err := NewStore(ctx, Config{BaseURL: server.URL, ProjectID: "proj-1", APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("open fresh store: %v", err)
	}
	got, ok := fresh.GetDeal(deal.ID)
	if !ok {
		t.Fatalf("deal missing after hydration")
	}
	if got.Title != "Oak St" || got.Stage != deal.Stage {
		t.Fatalf("hydrated deal diverged: %+v", got)
	}
}

func TestHostedStoreRejectsBadCredentials(t *testing.T) {
	svc := newFakeRecordService("proj-1", "secret")
	server := httptest.NewServer(svc)
	defer server.Close()

	if _, err := NewStore(context.Background(), Config{BaseURL: server.URL, ProjectID: "proj-1", APIKey: "wrong"}, nil); err == nil {
		t.Fatalf("expected hydration failure with bad key")
	}
}
