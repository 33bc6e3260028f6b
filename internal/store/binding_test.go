package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBindingRepository_CRUD(t *testing.T) {
	s := newSeededStore(t)
	repo := s.Bindings()

	b := &Binding{
		Letter:     "L",
		PluginName: "keyboard",
		ActionName: "keystroke",
		Config:     json.RawMessage(`{"key":"l","modifiers":["cmd"]}`),
		Enabled:    true,
	}
	if err := repo.Create(b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID == "" || b.CreatedAt.IsZero() {
		t.Errorf("ID and CreatedAt should be set: %+v", b)
	}

	got, err := repo.GetByLetter("L")
	if err != nil {
		t.Fatalf("GetByLetter: %v", err)
	}
	if got == nil || got.ActionName != "keystroke" || !got.Enabled {
		t.Fatalf("unexpected binding %+v", got)
	}

	got.Enabled = false
	got.Config = nil
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := repo.GetByID(b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Enabled {
		t.Error("binding should be disabled after update")
	}
	if string(updated.Config) != "{}" {
		t.Errorf("nil config should be stored as {}, got %s", updated.Config)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 binding, got %d", len(list))
	}

	if err := repo.Delete(b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBindingRepository_Errors(t *testing.T) {
	s := newSeededStore(t)
	repo := s.Bindings()

	if err := repo.Create(&Binding{Letter: "?", PluginName: "p", ActionName: "a"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown letter: expected ErrNotFound, got %v", err)
	}

	if err := repo.Create(&Binding{Letter: "A", PluginName: "p", ActionName: "a"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(&Binding{Letter: "A", PluginName: "p", ActionName: "b"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second binding: expected ErrDuplicate, got %v", err)
	}

	unbound, err := repo.GetByLetter("B")
	if err != nil || unbound != nil {
		t.Errorf("unbound letter should return nil, nil; got %v, %v", unbound, err)
	}

	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(&Binding{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing: expected ErrNotFound, got %v", err)
	}
}
