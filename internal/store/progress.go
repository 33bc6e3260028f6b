package store

import (
	"database/sql"
	"errors"
	"time"
)

// Progress is a user's standing on one letter.
type Progress struct {
	UserID         string
	Letter         string
	Description    string
	Proficiency    int
	TimesPracticed int
	LastPracticed  time.Time
}

// ProgressRepository reads practice progress.
type ProgressRepository struct {
	db *sql.DB
}

// Progress returns the progress repository for this store.
func (s *Store) Progress() *ProgressRepository {
	return &ProgressRepository{db: s.db}
}

const progressSelect = `SELECT p.user_id, l.name, l.description, p.proficiency, p.times_practiced, p.last_practiced
	FROM practice_progress p JOIN letters l ON l.id = p.letter_id`

func scanProgress(sc rowScanner) (*Progress, error) {
	p := &Progress{}
	err := sc.Scan(&p.UserID, &p.Letter, &p.Description, &p.Proficiency, &p.TimesPracticed, &p.LastPracticed)
	return p, err
}

// ListByUser returns every letter the user has practiced, alphabetically.
func (r *ProgressRepository) ListByUser(userID string) ([]*Progress, error) {
	rows, err := r.db.Query(progressSelect+` WHERE p.user_id = ? ORDER BY l.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns a user's progress on one letter, or ErrNotFound.
func (r *ProgressRepository) Get(userID, letter string) (*Progress, error) {
	p, err := scanProgress(r.db.QueryRow(progressSelect+` WHERE p.user_id = ? AND l.name = ?`, userID, letter))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
