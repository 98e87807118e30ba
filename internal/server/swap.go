package server

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const swapViewSelect = `
	SELECT sr.id,
	       sr.from_user_id, fu.name AS from_user_name,
	       sr.to_user_id,   tu.name AS to_user_name,
	       sr.from_book_id, fb.title AS from_book_title,
	       sr.to_book_id,   tb.title AS to_book_title,
	       sr.status, sr.created_at, sr.updated_at
	FROM swap_requests sr
	LEFT JOIN users fu ON fu.id = sr.from_user_id
	LEFT JOIN users tu ON tu.id = sr.to_user_id
	LEFT JOIN books fb ON fb.id = sr.from_book_id
	LEFT JOIN books tb ON tb.id = sr.to_book_id`

func (s *SQLiteStore) swapView(id string) (*SwapRequestView, error) {
	var v SwapRequestView
	err := s.db.Get(&v, swapViewSelect+` WHERE sr.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ProposeSwap records a pending request after a courtesy ownership check.
// Ownership may drift before resolution, so AcceptSwap re-validates; no
// book state changes here.
func (s *SQLiteStore) ProposeSwap(fromUserID, toUserID, fromBookID, toBookID string) (*SwapRequestView, error) {
	fromBook, err := s.GetBook(fromBookID)
	if err != nil {
		return nil, err
	}
	toBook, err := s.GetBook(toBookID)
	if err != nil {
		return nil, err
	}
	if fromBook.OwnerID == nil || *fromBook.OwnerID != fromUserID {
		return nil, fmt.Errorf("%w: from_user does not own from_book", ErrInvalidOwnership)
	}
	if toBook.OwnerID == nil || *toBook.OwnerID != toUserID {
		return nil, fmt.Errorf("%w: to_user does not own to_book", ErrInvalidOwnership)
	}

	id := uuid.NewString()
	now := time.Now().Unix()
	_, err = s.db.Exec(
		`INSERT INTO swap_requests (id, from_user_id, to_user_id, from_book_id, to_book_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'pending', ?, ?)`,
		id, fromUserID, toUserID, fromBookID, toBookID, now, now,
	)
	if err != nil {
		return nil, err
	}
	return s.swapView(id)
}

// AcceptSwap resolves a pending request: re-validates current ownership,
// exchanges the two owners, and marks the request accepted, all in one
// transaction. The owner updates are compare-and-set so a concurrent accept
// over the same books loses with ErrOwnershipDrift and nothing persists.
func (s *SQLiteStore) AcceptSwap(requestID string) (*SwapRequestView, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req SwapRequest
	err = tx.Get(&req,
		`SELECT id, from_user_id, to_user_id, from_book_id, to_book_id, status, created_at, updated_at
		 FROM swap_requests WHERE id = ?`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, ErrNotPending
	}

	// Both books must still exist and still sit with the parties named by
	// the request. Drift leaves every row untouched.
	for _, bookID := range []string{req.FromBookID, req.ToBookID} {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, bookID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	now := time.Now().Unix()
	exchanges := []struct {
		bookID   string
		curOwner string
		newOwner string
	}{
		{req.FromBookID, req.FromUserID, req.ToUserID},
		{req.ToBookID, req.ToUserID, req.FromUserID},
	}
	for _, e := range exchanges {
		res, err := tx.Exec(
			`UPDATE books SET owner_id=?, available=0, updated_at=? WHERE id=? AND owner_id=?`,
			e.newOwner, now, e.bookID, e.curOwner,
		)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrOwnershipDrift
		}
	}

	res, err := tx.Exec(
		`UPDATE swap_requests SET status='accepted', updated_at=? WHERE id=? AND status='pending'`,
		now, requestID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotPending
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.swapView(requestID)
}

// RejectSwap is terminal and touches no book state.
func (s *SQLiteStore) RejectSwap(requestID string) (*SwapRequestView, error) {
	var status SwapStatus
	err := s.db.Get(&status, `SELECT status FROM swap_requests WHERE id = ?`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrNotPending
	}

	res, err := s.db.Exec(
		`UPDATE swap_requests SET status='rejected', updated_at=? WHERE id=? AND status='pending'`,
		time.Now().Unix(), requestID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotPending
	}
	return s.swapView(requestID)
}

// ListIncomingSwaps returns requests addressed to a user, pending first,
// newest first within a status group.
func (s *SQLiteStore) ListIncomingSwaps(toUserID string) ([]SwapRequestView, error) {
	views := []SwapRequestView{}
	err := s.db.Select(&views,
		swapViewSelect+`
		WHERE sr.to_user_id = ?
		ORDER BY CASE sr.status WHEN 'pending' THEN 0 ELSE 1 END, sr.created_at DESC`,
		toUserID)
	return views, err
}

func (s *SQLiteStore) ListAllSwaps() ([]SwapRequestView, error) {
	views := []SwapRequestView{}
	err := s.db.Select(&views, swapViewSelect+` ORDER BY sr.created_at DESC`)
	return views, err
}
