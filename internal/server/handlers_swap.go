package server

import (
	"net/http"
	"strings"

	"github.com/Madhavi-Gurav/BookSwap/internal/shared"
)

// SwapRequests handles /api/swap_requests: anyone may propose, the full
// listing is admin-only.
func (a *API) SwapRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.proposeSwap(w, r)
	case http.MethodGet:
		if !a.requireAdmin(w, r) {
			return
		}
		views, err := a.Store.ListAllSwaps()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, views)
	default:
		methodNotAllowed(w)
	}
}

func (a *API) proposeSwap(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body", "kind": "validation"})
		return
	}
	var req shared.ProposeSwapRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json", "kind": "validation"})
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" || req.FromBookID == "" || req.ToBookID == "" {
		writeJSON(w, 400, map[string]any{"error": "all fields required", "kind": "validation"})
		return
	}

	view, err := a.Store.ProposeSwap(req.FromUserID, req.ToUserID, req.FromBookID, req.ToBookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"message": "Swap request created", "request": view})
}

// SwapRequestAction handles /api/swap_requests/{id}/accept and
// /api/swap_requests/{id}/reject.
//
// Accept is deliberately left open to any caller that knows the request id,
// matching the system's observed behavior. That is almost certainly an
// authorization gap (nothing ties the caller to the recipient); it is kept
// as-is rather than silently tightened.
func (a *API) SwapRequestAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/swap_requests/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeJSON(w, 404, map[string]any{"error": "not found", "kind": "not_found"})
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}

	id := parts[0]
	switch parts[1] {
	case "accept":
		view, err := a.Store.AcceptSwap(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "Swap accepted and ownership updated", "request": view})
	case "reject":
		view, err := a.Store.RejectSwap(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "Swap rejected", "request": view})
	default:
		writeJSON(w, 404, map[string]any{"error": "not found", "kind": "not_found"})
	}
}

// NewMux wires the full HTTP surface; exact paths registered before the
// prefix routes that parse ids by hand.
func NewMux(a *API, webDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users", a.Users)
	mux.HandleFunc("/api/users/", a.UserSubtree)
	mux.HandleFunc("/api/books", a.Books)
	mux.HandleFunc("/api/books/available", a.AvailableBooks)
	mux.HandleFunc("/api/books/assign", a.AssignBook)
	mux.HandleFunc("/api/books/return", a.ReturnBook)
	mux.HandleFunc("/api/books/", a.BookByID)
	mux.HandleFunc("/api/swap_requests", a.SwapRequests)
	mux.HandleFunc("/api/swap_requests/", a.SwapRequestAction)
	mux.Handle("/", http.FileServer(http.Dir(webDir)))
	return mux
}
