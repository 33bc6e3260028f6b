package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Guest account shared by anonymous practice sessions.
const (
	GuestUsername = "guest"
	GuestEmail    = "guest@example.com"
)

// User is a practice account.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// UserRepository provides access to users.
type UserRepository struct {
	db *sql.DB
}

// Users returns the user repository for this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Create inserts a new user, assigning an ID when none is set.
func (r *UserRepository) Create(u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO users (id, username, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id string) (*User, error) {
	return r.get(`SELECT id, username, email, created_at FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*User, error) {
	return r.get(`SELECT id, username, email, created_at FROM users WHERE username = ?`, username)
}

func (r *UserRepository) get(query string, arg string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// EnsureGuest returns the guest user, creating it on first use.
func (r *UserRepository) EnsureGuest() (*User, error) {
	u, err := r.GetByUsername(GuestUsername)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u = &User{Username: GuestUsername, Email: GuestEmail}
	if err := r.Create(u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return r.GetByUsername(GuestUsername)
		}
		return nil, err
	}
	return u, nil
}
