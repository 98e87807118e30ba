package shared

type CreateUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	IsAdmin              bool   `json:"is_admin,omitempty"`
	AssignFirstAvailable bool   `json:"assign_first_available,omitempty"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	IsAdmin *bool   `json:"is_admin,omitempty"`
}

type CreateBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	OwnerID string `json:"owner_id,omitempty"`
}

// UpdateBookRequest distinguishes "owner_id absent" from "owner_id: null":
// absent leaves ownership alone, explicit null releases the book to the library.
type UpdateBookRequest struct {
	Title   *string `json:"title,omitempty"`
	Author  *string `json:"author,omitempty"`
	OwnerID *string `json:"owner_id"`

	OwnerIDSet bool `json:"-"`
}

type AssignBookRequest struct {
	BookID string `json:"book_id"`
	UserID string `json:"user_id"`
}

type ReturnBookRequest struct {
	BookID string `json:"book_id"`
}

type ProposeSwapRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	FromBookID string `json:"from_book_id"`
	ToBookID   string `json:"to_book_id"`
}

type AssignedBookRef struct {
	BookID string `json:"book_id"`
}
