package checkoutrepo

import (
	"context"
	"database/sql"

	"booknexus/model"
)

// Repo writes the checkout ledger. Rows are an audit trail; nothing in the
// availability logic reads them back.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, entry *model.Checkout) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO checkouts (user_id, book_id)
		VALUES ($1, $2)
		RETURNING id, checked_out_at`,
		entry.UserID, entry.BookID,
	).Scan(&entry.ID, &entry.CheckedOutAt)
}

// MarkReturned stamps the most recent open ledger row for the user/book pair.
// Returns false when no open row exists (e.g. returned by a different user).
func (r *Repo) MarkReturned(ctx context.Context, userID, bookID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checkouts
		SET returned_at = NOW()
		WHERE id = (
			SELECT id FROM checkouts
			WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL
			ORDER BY checked_out_at DESC, id DESC
			LIMIT 1
		)`,
		userID, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
