package server

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/Madhavi-Gurav/BookSwap/internal/shared"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type API struct {
	Store      Store
	AdminToken string
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errStatus(err)
	if code == 500 {
		log.Printf("store error: %v", err)
		writeJSON(w, 500, map[string]any{"error": "internal error", "kind": "internal"})
		return
	}
	writeJSON(w, code, map[string]any{"error": err.Error(), "kind": errKind(err)})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 2<<20))
}

// requireAdmin gates admin-only mutations on the shared X-Admin-Token
// header. Some paths mix open and admin methods, so this is called
// per-method rather than wrapped around whole handlers.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	token := r.Header.Get("X-Admin-Token")
	if token == "" || token != a.AdminToken {
		log.Printf("auth: admin token rejected path=%s", r.URL.Path)
		writeJSON(w, 403, map[string]any{"error": "admin token required", "kind": "unauthorized"})
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, 405, map[string]any{"error": "method not allowed", "kind": "validation"})
}

// Users handles /api/users (list + registration).
func (a *API) Users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := a.Store.ListUsers()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, users)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.CreateUserRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		writeJSON(w, 400, map[string]any{"error": "name and email required", "kind": "validation"})
		return
	}

	u, err := a.Store.CreateUser(name, email, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	var assigned *shared.AssignedBookRef
	if req.AssignFirstAvailable {
		if book, err := a.Store.FirstAvailableBook(); err == nil {
			if _, err := a.Store.AssignBook(book.ID, u.ID); err == nil {
				assigned = &shared.AssignedBookRef{BookID: book.ID}
			}
		}
	}

	writeJSON(w, 201, map[string]any{
		"message":       "User created",
		"user":          u,
		"assigned_book": assigned,
	})
}

// UserSubtree handles /api/users/{id} (admin update/delete) and
// /api/users/{id}/swap_requests (incoming requests for the recipient).
func (a *API) UserSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		a.userByID(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "swap_requests":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		views, err := a.Store.ListIncomingSwaps(parts[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, views)
	default:
		writeJSON(w, 404, map[string]any{"error": "not found", "kind": "not_found"})
	}
}

func (a *API) userByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		if !a.requireAdmin(w, r) {
			return
		}
		body, err := readBody(r)
		if err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
			return
		}
		var req shared.UpdateUserRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
			return
		}
		u, err := a.Store.UpdateUser(id, req.Name, req.Email, req.IsAdmin)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "Updated", "user": u})
	case http.MethodDelete:
		if !a.requireAdmin(w, r) {
			return
		}
		if err := a.Store.DeleteUser(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "User and related ownerships cleaned up"})
	default:
		methodNotAllowed(w)
	}
}

// Books handles /api/books (list + admin create).
func (a *API) Books(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		books, err := a.Store.ListBooks()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, books)
	case http.MethodPost:
		if !a.requireAdmin(w, r) {
			return
		}
		a.createBook(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) createBook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.CreateBookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		writeJSON(w, 400, map[string]any{"error": "title and author required", "kind": "validation"})
		return
	}
	var ownerID *string
	if req.OwnerID != "" {
		ownerID = &req.OwnerID
	}
	b, err := a.Store.CreateBook(title, author, ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := a.Store.GetBookView(b.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"message": "Book created", "book": view})
}

// AvailableBooks handles /api/books/available.
func (a *API) AvailableBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	books, err := a.Store.ListAvailableBooks()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, books)
}

// BookByID handles /api/books/{id} (admin update/delete).
func (a *API) BookByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/books/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, 404, map[string]any{"error": "not found", "kind": "not_found"})
		return
	}
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		if !a.requireAdmin(w, r) {
			return
		}
		a.updateBook(w, r, id)
	case http.MethodDelete:
		if !a.requireAdmin(w, r) {
			return
		}
		if err := a.Store.DeleteBook(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "Book deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (a *API) updateBook(w http.ResponseWriter, r *http.Request, id string) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.UpdateBookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	// "owner_id": null releases the book; an absent key leaves ownership
	// alone, so key presence has to be probed on the raw body.
	var raw map[string]jsoniter.RawMessage
	_ = json.Unmarshal(body, &raw)
	_, setOwner := raw["owner_id"]

	b, err := a.Store.UpdateBook(id, req.Title, req.Author, req.OwnerID, setOwner)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := a.Store.GetBookView(b.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"message": "Book updated", "book": view})
}

// AssignBook handles /api/books/assign (open endpoint, a user borrows an
// available library book).
func (a *API) AssignBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.AssignBookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	if req.BookID == "" || req.UserID == "" {
		writeJSON(w, 400, map[string]any{"error": "book_id and user_id required", "kind": "validation"})
		return
	}
	b, err := a.Store.AssignBook(req.BookID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := a.Store.GetBookView(b.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"message": "Assigned", "book": view})
}

// ReturnBook handles /api/books/return (release back to the library).
func (a *API) ReturnBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.ReturnBookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	if req.BookID == "" {
		writeJSON(w, 400, map[string]any{"error": "book_id required", "kind": "validation"})
		return
	}
	b, err := a.Store.ReturnBook(req.BookID)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := a.Store.GetBookView(b.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"message": "Returned to library", "book": view})
}
