package favorites

import "time"

// Favorite associates a user with one open mat listing. The document ID
// is derived from both identifiers, so repeating an add or a remove is a
// no-op rather than an error.
type Favorite struct {
	UserID    string    `firestore:"user_id" json:"user_id"`
	OpenMatID string    `firestore:"open_mat_id" json:"open_mat_id"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}
