package server

// SwapStatus is the closed set of states a swap request moves through.
// pending is the only non-terminal state.
type SwapStatus string

const (
	StatusPending  SwapStatus = "pending"
	StatusAccepted SwapStatus = "accepted"
	StatusRejected SwapStatus = "rejected"
)

func (s SwapStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

type User struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
	IsAdmin bool   `db:"is_admin" json:"is_admin"`
}

type Book struct {
	ID        string  `db:"id" json:"id"`
	Title     string  `db:"title" json:"title"`
	Author    string  `db:"author" json:"author"`
	Available bool    `db:"available" json:"available"`
	OwnerID   *string `db:"owner_id" json:"owner_id"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

type SwapRequest struct {
	ID         string     `db:"id" json:"id"`
	FromUserID string     `db:"from_user_id" json:"from_user_id"`
	ToUserID   string     `db:"to_user_id" json:"to_user_id"`
	FromBookID string     `db:"from_book_id" json:"from_book_id"`
	ToBookID   string     `db:"to_book_id" json:"to_book_id"`
	Status     SwapStatus `db:"status" json:"status"`
	CreatedAt  int64      `db:"created_at" json:"created_at"`
	UpdatedAt  int64      `db:"updated_at" json:"updated_at"`
}
