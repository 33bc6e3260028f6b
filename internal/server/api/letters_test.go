package api

import (
	"net/http"
	"testing"
)

func TestLetterHandler_List(t *testing.T) {
	tests := []struct {
		name    string
		handler *LetterHandler
	}{
		{name: "from store", handler: NewLetterHandler(newTestStore(t), nil)},
		{name: "built-in fallback", handler: NewLetterHandler(nil, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, tt.handler, http.MethodGet, "/api/letters", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}

			var resp listLettersResponse
			decode(t, rec, &resp)
			if len(resp.Letters) != 26 {
				t.Fatalf("expected 26 letters, got %d", len(resp.Letters))
			}
			if resp.Letters[0].Name != "A" || resp.Letters[25].Name != "Z" {
				t.Errorf("letters not ordered A..Z: %s..%s", resp.Letters[0].Name, resp.Letters[25].Name)
			}
			for _, l := range resp.Letters {
				if l.Description == "" || l.Difficulty < 1 || l.Difficulty > 5 {
					t.Errorf("incomplete letter %+v", l)
				}
			}
		})
	}
}

func TestLetterHandler_Get(t *testing.T) {
	h := NewLetterHandler(newTestStore(t), nil)

	rec := doJSON(t, h, http.MethodGet, "/api/letters/d", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var l letterResponse
	decode(t, rec, &l)
	if l.Name != "D" {
		t.Errorf("expected letter D, got %q", l.Name)
	}

	for _, path := range []string{"/api/letters/1", "/api/letters/AB"} {
		if rec := doJSON(t, h, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestLetterHandler_Sync(t *testing.T) {
	s := newTestStore(t)
	h := NewLetterHandler(s, nil)

	if _, err := s.DB().Exec(`DELETE FROM letters WHERE name IN ('Q', 'Z')`); err != nil {
		t.Fatalf("delete letters: %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/letters/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp syncLettersResponse
	decode(t, rec, &resp)
	if resp.Inserted != 2 || resp.Total != 26 {
		t.Errorf("sync = %+v, want inserted 2 total 26", resp)
	}

	if rec := doJSON(t, h, http.MethodGet, "/api/letters/sync", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET sync: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := doJSON(t, NewLetterHandler(nil, nil), http.MethodPost, "/api/letters/sync", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("sync without store: expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
