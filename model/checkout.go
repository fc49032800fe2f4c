package model

import "time"

// Checkout is a historical ledger row. It is written on checkout/return
// transitions and never read back by the availability logic.
type Checkout struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}
