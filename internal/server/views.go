package server

// Denormalized read views. The store resolves the joins so callers never
// chase owner or participant ids themselves.

type BookView struct {
	ID        string  `db:"id" json:"id"`
	Title     string  `db:"title" json:"title"`
	Author    string  `db:"author" json:"author"`
	Available bool    `db:"available" json:"available"`
	OwnerID   *string `db:"owner_id" json:"owner_id"`
	OwnerName *string `db:"owner_name" json:"owner_name"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

type SwapRequestView struct {
	ID            string     `db:"id" json:"id"`
	FromUserID    string     `db:"from_user_id" json:"from_user_id"`
	FromUserName  *string    `db:"from_user_name" json:"from_user_name"`
	ToUserID      string     `db:"to_user_id" json:"to_user_id"`
	ToUserName    *string    `db:"to_user_name" json:"to_user_name"`
	FromBookID    string     `db:"from_book_id" json:"from_book_id"`
	FromBookTitle *string    `db:"from_book_title" json:"from_book_title"`
	ToBookID      string     `db:"to_book_id" json:"to_book_id"`
	ToBookTitle   *string    `db:"to_book_title" json:"to_book_title"`
	Status        SwapStatus `db:"status" json:"status"`
	CreatedAt     int64      `db:"created_at" json:"created_at"`
	UpdatedAt     int64      `db:"updated_at" json:"updated_at"`
}
