package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"booknexus/model"
)

const bookColumns = `id, title, author, isbn, image_url, subject, research_area,
	location, total_copies, available_copies, description, created_at, updated_at`

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	b := &model.Book{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.ImageURL, &b.Subject,
		&b.ResearchArea, &b.Location, &b.TotalCopies, &b.AvailableCopies,
		&b.Description, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repo) Create(ctx context.Context, b *model.Book) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, isbn, image_url, subject,
			research_area, location, total_copies, available_copies, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		b.Title, b.Author, b.ISBN, b.ImageURL, b.Subject,
		b.ResearchArea, b.Location, b.TotalCopies, b.AvailableCopies, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *Repo) Update(ctx context.Context, b *model.Book) error {
	return r.db.QueryRowContext(ctx, `
		UPDATE books
		SET title=$2, author=$3, isbn=$4, image_url=$5, subject=$6,
			research_area=$7, location=$8, total_copies=$9,
			available_copies=$10, description=$11, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at`,
		b.ID, b.Title, b.Author, b.ISBN, b.ImageURL, b.Subject,
		b.ResearchArea, b.Location, b.TotalCopies, b.AvailableCopies, b.Description,
	).Scan(&b.UpdatedAt)
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *Repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *Repo) List(ctx context.Context) ([]model.Book, error) {
	return r.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// Search filters with case-insensitive substring matches. query applies to
// title OR author OR isbn; subject and researchArea are ANDed independently.
// Empty criteria impose no filter.
func (r *Repo) Search(ctx context.Context, query, subject, researchArea string) ([]model.Book, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v string) string {
		args = append(args, "%"+v+"%")
		return fmt.Sprintf("$%d", len(args))
	}
	if query != "" {
		p := arg(query)
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR author ILIKE %[1]s OR isbn ILIKE %[1]s)", p))
	}
	if subject != "" {
		where = append(where, "subject ILIKE "+arg(subject))
	}
	if researchArea != "" {
		where = append(where, "research_area ILIKE "+arg(researchArea))
	}

	q := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"
	return r.queryBooks(ctx, q, args...)
}

// CheckoutCopy decrements available_copies only while a copy is free.
// The guarded single statement makes concurrent checkouts serialize at the
// store instead of racing a read-check-write sequence.
func (r *Repo) CheckoutCopy(ctx context.Context, bookID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1
		AND available_copies > 0`,
		bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

// ReturnCopy increments available_copies only while a copy is outstanding.
func (r *Repo) ReturnCopy(ctx context.Context, bookID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies + 1, updated_at = NOW()
		WHERE id = $1
		AND available_copies < total_copies`,
		bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *Repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
