// Package items implements owner-scoped CRUD over the comic collection.
// Every operation is parameterized by the acting user's id; no query can
// reach another user's rows.
package items

import "time"

// Item is a comic in a user's collection. Publisher and grade references are
// optional foreign keys resolved from free text at write time.
type Item struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Title         string    `json:"title"`
	IssueNumber   string    `json:"issue_number"`
	PublisherID   *int      `json:"publisher_id"`
	GradeID       *int      `json:"grade_id"`
	CoverImageURL *string   `json:"cover_image_url"`
	BuyPrice      *float64  `json:"buy_price"`
	CurrentValue  *float64  `json:"current_value"`
	SellPrice     *float64  `json:"sell_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher is a comic publisher, created lazily on first reference.
type Publisher struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Grade is one row of the fixed grading scale, seeded at startup and
// read-only afterward.
type Grade struct {
	ID           int     `json:"id"`
	Abbreviation string  `json:"abbreviation"`
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Comment      *string `json:"comment,omitempty"`
}
