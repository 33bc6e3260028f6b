package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Proficiency bookkeeping for practice progress.
const (
	ProficiencyStep      = 5
	ProficiencyMax       = 100
	FirstSuccessProgress = 10
	FirstAttemptProgress = 5
)

// Recognition is one reported attempt at a letter. UserID is empty for
// anonymous attempts.
type Recognition struct {
	ID         string
	UserID     string
	Letter     string
	Success    bool
	Confidence float64
	DurationMS int64
	CreatedAt  time.Time
}

// RecognitionRepository records attempts.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Save records an attempt. When the attempt belongs to a user, the user's
// progress on the letter is updated in the same transaction. Unknown
// letters return ErrNotFound.
func (r *RecognitionRepository) Save(rec *Recognition) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		lid, err := letterID(tx, rec.Letter)
		if err != nil {
			return err
		}

		var userID any
		if rec.UserID != "" {
			userID = rec.UserID
		}

		_, err = tx.Exec(
			`INSERT INTO recognitions (id, user_id, letter_id, success, confidence, duration_ms, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, userID, lid, boolToInt(rec.Success), rec.Confidence, rec.DurationMS, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert recognition: %w", err)
		}

		if rec.UserID == "" {
			return nil
		}
		return updateProgress(tx, rec.UserID, lid, rec.Success, rec.CreatedAt)
	})
}

func updateProgress(tx *sql.Tx, userID string, letterID int64, success bool, at time.Time) error {
	start := FirstAttemptProgress
	step := 0
	if success {
		start = FirstSuccessProgress
		step = ProficiencyStep
	}

	_, err := tx.Exec(
		`INSERT INTO practice_progress (user_id, letter_id, proficiency, times_practiced, last_practiced)
		 VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(user_id, letter_id) DO UPDATE SET
			proficiency = MIN(?, proficiency + ?),
			times_practiced = times_practiced + 1,
			last_practiced = excluded.last_practiced`,
		userID, letterID, start, at, ProficiencyMax, step,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// ListByUser returns a user's most recent attempts, newest first. A limit
// of zero or less returns all of them.
func (r *RecognitionRepository) ListByUser(userID string, limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT r.id, r.user_id, l.name, r.success, r.confidence, r.duration_ms, r.created_at
		 FROM recognitions r JOIN letters l ON l.id = r.letter_id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC, r.rowid DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		var uid sql.NullString
		var success int
		if err := rows.Scan(&rec.ID, &uid, &rec.Letter, &success, &rec.Confidence, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.UserID = uid.String
		rec.Success = success != 0
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
