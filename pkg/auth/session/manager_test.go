package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redisclient "github.com/detoxsabeho/orders-backend/pkg/redis"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redisclient.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(accessID string) string {
	return fmt.Sprintf("session:%s", accessID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerSessionLifecycle(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if accessID == "" {
		t.Fatal("expected non-empty access id")
	}

	if err := manager.Start(ctx, accessID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, ok := store.data[store.SessionKey(accessID)]; !ok {
		t.Fatal("expected session key in store")
	}

	active, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !active {
		t.Fatal("expected active session")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	active, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if active {
		t.Fatal("expected revoked session to be inactive")
	}
}

func TestManagerRejectsEmptyAccessID(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	if err := manager.Start(ctx, "  "); err == nil {
		t.Fatal("expected start with blank id to fail")
	}
	if err := manager.Revoke(ctx, ""); err == nil {
		t.Fatal("expected revoke with blank id to fail")
	}
	if _, err := manager.HasSession(ctx, ""); err == nil {
		t.Fatal("expected check with blank id to fail")
	}
}
