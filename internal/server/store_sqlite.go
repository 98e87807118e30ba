package server

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const bookViewSelect = `
	SELECT b.id, b.title, b.author, b.available, b.owner_id,
	       u.name AS owner_name, b.created_at, b.updated_at
	FROM books b
	LEFT JOIN users u ON u.id = b.owner_id`

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// ---- Users ----

func (s *SQLiteStore) CreateUser(name, email string, isAdmin bool) (*User, error) {
	u := &User{
		ID:      uuid.NewString(),
		Name:    name,
		Email:   email,
		IsAdmin: isAdmin,
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, is_admin) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.IsAdmin,
	)
	if isUniqueViolation(err, "users.email") {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQLiteStore) GetUser(id string) (*User, error) {
	var u User
	err := s.db.Get(&u, `SELECT id, name, email, is_admin FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var u User
	err := s.db.Get(&u, `SELECT id, name, email, is_admin FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers() ([]User, error) {
	users := []User{}
	err := s.db.Select(&users, `SELECT id, name, email, is_admin FROM users ORDER BY name, id`)
	return users, err
}

func (s *SQLiteStore) UpdateUser(id string, name, email *string, isAdmin *bool) (*User, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	if isAdmin != nil {
		u.IsAdmin = *isAdmin
	}
	_, err = s.db.Exec(
		`UPDATE users SET name=?, email=?, is_admin=? WHERE id=?`,
		u.Name, u.Email, u.IsAdmin, u.ID,
	)
	if isUniqueViolation(err, "users.email") {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the user and, in the same transaction, releases every
// book they own back to the library. Readers never observe books pointing
// at a deleted owner.
func (s *SQLiteStore) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.Exec(
		`UPDATE books SET owner_id=NULL, available=1, updated_at=? WHERE owner_id=?`,
		now, id,
	); err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// EnsureAdmin seeds a root admin user for the given email if no user has it
// yet. Called once at startup; a second boot is a no-op.
func (s *SQLiteStore) EnsureAdmin(email string) (*User, error) {
	u, err := s.GetUserByEmail(email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreateUser("root", email, true)
}

// ---- Books ----

func (s *SQLiteStore) CreateBook(title, author string, ownerID *string) (*Book, error) {
	now := time.Now().Unix()
	b := &Book{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Optional direct assignment; an unknown owner id is ignored and the
	// book lands in the library, matching the public API contract.
	if ownerID != nil {
		if _, err := s.GetUser(*ownerID); err == nil {
			b.OwnerID = ownerID
			b.Available = false
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO books (id, title, author, available, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Author, b.Available, b.OwnerID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *SQLiteStore) GetBook(id string) (*Book, error) {
	var b Book
	err := s.db.Get(&b,
		`SELECT id, title, author, available, owner_id, created_at, updated_at
		 FROM books WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) GetBookView(id string) (*BookView, error) {
	var b BookView
	err := s.db.Get(&b, bookViewSelect+` WHERE b.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) ListBooks() ([]BookView, error) {
	books := []BookView{}
	err := s.db.Select(&books, bookViewSelect+` ORDER BY b.created_at, b.id`)
	return books, err
}

func (s *SQLiteStore) ListAvailableBooks() ([]BookView, error) {
	books := []BookView{}
	err := s.db.Select(&books, bookViewSelect+` WHERE b.available = 1 ORDER BY b.created_at, b.id`)
	return books, err
}

func (s *SQLiteStore) ListBooksByOwner(ownerID string) ([]BookView, error) {
	books := []BookView{}
	err := s.db.Select(&books, bookViewSelect+` WHERE b.owner_id = ? ORDER BY b.created_at, b.id`, ownerID)
	return books, err
}

func (s *SQLiteStore) UpdateBook(id string, title, author *string, ownerID *string, setOwner bool) (*Book, error) {
	b, err := s.GetBook(id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		b.Title = *title
	}
	if author != nil {
		b.Author = *author
	}
	if setOwner {
		if ownerID == nil {
			b.OwnerID = nil
			b.Available = true
		} else {
			if _, err := s.GetUser(*ownerID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, fmt.Errorf("%w: owner not found", ErrValidation)
				}
				return nil, err
			}
			b.OwnerID = ownerID
			b.Available = false
		}
	}
	b.UpdatedAt = time.Now().Unix()
	_, err = s.db.Exec(
		`UPDATE books SET title=?, author=?, available=?, owner_id=?, updated_at=? WHERE id=?`,
		b.Title, b.Author, b.Available, b.OwnerID, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *SQLiteStore) DeleteBook(id string) error {
	res, err := s.db.Exec(`DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Ownership ----

// AssignBook hands an available book to a user. The owner update is guarded
// on availability so two concurrent assigns cannot both win.
func (s *SQLiteStore) AssignBook(bookID, userID string) (*Book, error) {
	if _, err := s.GetBook(bookID); err != nil {
		return nil, err
	}
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		`UPDATE books SET owner_id=?, available=0, updated_at=? WHERE id=? AND available=1`,
		userID, time.Now().Unix(), bookID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotAvailable
	}
	return s.GetBook(bookID)
}

// ReturnBook releases a book back to the library. Idempotent: returning an
// unowned book succeeds and changes nothing.
func (s *SQLiteStore) ReturnBook(bookID string) (*Book, error) {
	if _, err := s.GetBook(bookID); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(
		`UPDATE books SET owner_id=NULL, available=1, updated_at=? WHERE id=? AND owner_id IS NOT NULL`,
		time.Now().Unix(), bookID,
	)
	if err != nil {
		return nil, err
	}
	return s.GetBook(bookID)
}

func (s *SQLiteStore) FirstAvailableBook() (*Book, error) {
	var b Book
	err := s.db.Get(&b,
		`SELECT id, title, author, available, owner_id, created_at, updated_at
		 FROM books WHERE available = 1 ORDER BY created_at, id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
