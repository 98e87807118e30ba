package server

// Store is the persistence contract the API is written against.
// The SQLite implementation is the only one in tree; the split keeps
// handlers testable against whatever backs it.
type Store interface {
	// Users
	CreateUser(name, email string, isAdmin bool) (*User, error)
	GetUser(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	ListUsers() ([]User, error)
	UpdateUser(id string, name, email *string, isAdmin *bool) (*User, error)
	// DeleteUser releases every book the user owns back to the library
	// in the same transaction that removes the user row.
	DeleteUser(id string) error

	// Books
	CreateBook(title, author string, ownerID *string) (*Book, error)
	GetBook(id string) (*Book, error)
	GetBookView(id string) (*BookView, error)
	ListBooks() ([]BookView, error)
	ListAvailableBooks() ([]BookView, error)
	ListBooksByOwner(ownerID string) ([]BookView, error)
	UpdateBook(id string, title, author *string, ownerID *string, setOwner bool) (*Book, error)
	DeleteBook(id string) error

	// Ownership
	AssignBook(bookID, userID string) (*Book, error)
	ReturnBook(bookID string) (*Book, error)
	FirstAvailableBook() (*Book, error)

	// Swap protocol
	ProposeSwap(fromUserID, toUserID, fromBookID, toBookID string) (*SwapRequestView, error)
	AcceptSwap(requestID string) (*SwapRequestView, error)
	RejectSwap(requestID string) (*SwapRequestView, error)
	ListIncomingSwaps(toUserID string) ([]SwapRequestView, error)
	ListAllSwaps() ([]SwapRequestView, error)
}
