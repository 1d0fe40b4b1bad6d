package chatstore

import (
	"context"
	"testing"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/storage/memory"
)

func TestManager_ForUserReturnsSameStore(t *testing.T) {
	m := NewManager(memory.NewStore(), nil)

	first := m.ForUser(context.Background(), "user-1")
	second := m.ForUser(context.Background(), "user-1")

	if first != second {
		t.Error("Expected one store per user")
	}
	if first.CurrentUserID() != "user-1" {
		t.Errorf("Expected owner user-1, got %q", first.CurrentUserID())
	}
}

func TestManager_StoresAreIsolatedPerUser(t *testing.T) {
	docs := memory.NewStore()
	m := NewManager(docs, nil)

	alice := m.ForUser(context.Background(), "alice")
	bob := m.ForUser(context.Background(), "bob")

	if alice == bob {
		t.Fatal("Different users must get different stores")
	}

	id, err := alice.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if bob.Session(id) != nil {
		t.Error("One user's session must not appear in another's mirror")
	}
}

func TestManager_RestoresSnapshotOnFirstUse(t *testing.T) {
	docs := memory.NewStore()
	snaps := &fakeSnapshots{load: &Snapshot{CurrentSessionID: "session-7", CurrentUserID: "user-1"}}

	m := NewManager(docs, func(userID string) SnapshotStore {
		if userID != "user-1" {
			t.Errorf("Factory called for unexpected user %q", userID)
		}
		return snaps
	})

	store := m.ForUser(context.Background(), "user-1")
	if store.CurrentSessionID() != "session-7" {
		t.Errorf("Expected restored session id, got %q", store.CurrentSessionID())
	}
}
