package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/fingerspell/internal/gesture"
)

// Letter is a catalogue entry.
type Letter struct {
	ID          int64
	Name        string
	Description string
	Difficulty  int
	CreatedAt   time.Time
}

// LetterRepository provides access to the letter catalogue.
type LetterRepository struct {
	db *sql.DB
}

// Letters returns the letter repository for this store.
func (s *Store) Letters() *LetterRepository {
	return &LetterRepository{db: s.db}
}

// Seed inserts every letter that is not already present and returns how
// many rows were added. Existing letters are left untouched, so Seed can be
// run on every start.
func (r *LetterRepository) Seed(letters []*Letter) (int, error) {
	added := 0
	err := withTx(r.db, func(tx *sql.Tx) error {
		now := time.Now()
		for _, l := range letters {
			result, err := tx.Exec(
				`INSERT INTO letters (name, description, difficulty, created_at)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(name) DO NOTHING`,
				l.Name, l.Description, l.Difficulty, now,
			)
			if err != nil {
				return fmt.Errorf("seed letter %s: %w", l.Name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// SeedAlphabet seeds the catalogue from gesture.Alphabet.
func (r *LetterRepository) SeedAlphabet() (int, error) {
	return r.Seed(AlphabetLetters())
}

// AlphabetLetters converts gesture.Alphabet into catalogue entries.
func AlphabetLetters() []*Letter {
	signs := gesture.Alphabet.Signs()
	letters := make([]*Letter, 0, len(signs))
	for _, s := range signs {
		letters = append(letters, &Letter{
			Name:        s.Letter.String(),
			Description: s.Description,
			Difficulty:  s.Difficulty,
		})
	}
	return letters
}

// GetByName retrieves a letter by its name.
func (r *LetterRepository) GetByName(name string) (*Letter, error) {
	l := &Letter{}
	err := r.db.QueryRow(
		`SELECT id, name, description, difficulty, created_at
		 FROM letters WHERE name = ?`,
		name,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Difficulty, &l.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return l, nil
}

// List retrieves all letters in alphabetical order.
func (r *LetterRepository) List() ([]*Letter, error) {
	rows, err := r.db.Query(
		`SELECT id, name, description, difficulty, created_at
		 FROM letters ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []*Letter
	for rows.Next() {
		l := &Letter{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Difficulty, &l.CreatedAt); err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return letters, nil
}

// Count returns the number of letters in the catalogue.
func (r *LetterRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM letters`).Scan(&n)
	return n, err
}

func letterID(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, name string) (int64, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM letters WHERE name = ?`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("letter %s: %w", name, ErrNotFound)
		}
		return 0, err
	}
	return id, nil
}
