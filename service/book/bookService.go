package booksvc

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"booknexus/model"
	geminirepo "booknexus/repository/gemini"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNoCopies     ErrCode = "NO_COPIES"
	ErrAllCopiesIn  ErrCode = "ALL_COPIES_IN"
	ErrBadCounts    ErrCode = "BAD_COUNTS"
	ErrISBNTaken    ErrCode = "ISBN_TAKEN"
	ErrEmptyCatalog ErrCode = "EMPTY_CATALOG"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, query, subject, researchArea string) ([]model.Book, error)
	CheckoutCopy(ctx context.Context, bookID int64) (bool, error)
	ReturnCopy(ctx context.Context, bookID int64) (bool, error)
}

// Ledger records checkout history. It is an audit trail only; failures to
// stamp a return are not surfaced.
type Ledger interface {
	Insert(ctx context.Context, entry *model.Checkout) error
	MarkReturned(ctx context.Context, userID, bookID int64) (bool, error)
}

// Covers stores uploaded cover images and resolves their public paths.
type Covers interface {
	Save(filename string, src io.Reader) (string, error)
	Remove(publicPath string) error
}

// Upload is an incoming cover image file.
type Upload struct {
	Filename string
	File     io.Reader
}

type CreateParams struct {
	Title           string
	Author          string
	ISBN            string
	ImageURL        string
	Subject         string
	ResearchArea    string
	Location        string
	TotalCopies     int64
	AvailableCopies int64
	Description     string
	Cover           *Upload
}

// UpdateParams carries partial updates; nil fields keep the stored value.
type UpdateParams struct {
	Title           *string
	Author          *string
	ISBN            *string
	ImageURL        *string
	Subject         *string
	ResearchArea    *string
	Location        *string
	TotalCopies     *int64
	AvailableCopies *int64
	Description     *string
	Cover           *Upload
}

type Service interface {
	Create(ctx context.Context, p CreateParams) (*model.Book, error)
	Update(ctx context.Context, id int64, p UpdateParams) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, query, subject, researchArea string) ([]model.Book, error)

	// Checkout takes one copy while any is free; Return gives one back while
	// any is outstanding. Both fail without touching the counters otherwise.
	Checkout(ctx context.Context, userID, bookID int64) (*model.Book, error)
	Return(ctx context.Context, userID, bookID int64) (*model.Book, error)

	Summary(ctx context.Context, bookID int64) (string, error)
	AISearch(ctx context.Context, query string) ([]model.Book, error)
}

type service struct {
	r      Repo
	ledger Ledger
	covers Covers
	ai     geminirepo.Repo
}

func New(r Repo, ledger Ledger, covers Covers, ai geminirepo.Repo) Service {
	return &service{r: r, ledger: ledger, covers: covers, ai: ai}
}

func (s *service) Create(ctx context.Context, p CreateParams) (*model.Book, error) {
	if p.TotalCopies < 0 || p.AvailableCopies < 0 || p.AvailableCopies > p.TotalCopies {
		return nil, makeErr(ErrBadCounts)
	}

	imageURL := p.ImageURL
	if p.Cover != nil {
		saved, err := s.covers.Save(p.Cover.Filename, p.Cover.File)
		if err != nil {
			return nil, err
		}
		imageURL = saved
	}

	b := &model.Book{
		Title:           p.Title,
		Author:          p.Author,
		ISBN:            p.ISBN,
		ImageURL:        imageURL,
		Subject:         p.Subject,
		ResearchArea:    p.ResearchArea,
		Location:        p.Location,
		TotalCopies:     p.TotalCopies,
		AvailableCopies: p.AvailableCopies,
		Description:     p.Description,
	}
	if err := s.r.Create(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, p UpdateParams) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}

	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&b.Title, p.Title)
	setStr(&b.Author, p.Author)
	setStr(&b.ISBN, p.ISBN)
	setStr(&b.Subject, p.Subject)
	setStr(&b.ResearchArea, p.ResearchArea)
	setStr(&b.Location, p.Location)
	setStr(&b.Description, p.Description)
	if p.TotalCopies != nil {
		b.TotalCopies = *p.TotalCopies
	}
	if p.AvailableCopies != nil {
		b.AvailableCopies = *p.AvailableCopies
	}
	if b.TotalCopies < 0 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return nil, makeErr(ErrBadCounts)
	}

	if p.Cover != nil {
		// replacing an owned file: the old one is removed best-effort
		_ = s.covers.Remove(b.ImageURL)
		saved, err := s.covers.Save(p.Cover.Filename, p.Cover.File)
		if err != nil {
			return nil, err
		}
		b.ImageURL = saved
	} else if p.ImageURL != nil {
		b.ImageURL = *p.ImageURL
	}

	if err := s.r.Update(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return makeErr(ErrNotFound)
	}
	_ = s.covers.Remove(b.ImageURL)

	deleted, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.r.List(ctx)
}

func (s *service) Search(ctx context.Context, query, subject, researchArea string) ([]model.Book, error) {
	return s.r.Search(ctx, query, subject, researchArea)
}

func (s *service) Checkout(ctx context.Context, userID, bookID int64) (*model.Book, error) {
	ok, err := s.r.CheckoutCopy(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		b, err := s.r.ByID(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, makeErr(ErrNotFound)
		}
		return nil, makeErr(ErrNoCopies)
	}

	if err := s.ledger.Insert(ctx, &model.Checkout{UserID: userID, BookID: bookID}); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, bookID)
}

func (s *service) Return(ctx context.Context, userID, bookID int64) (*model.Book, error) {
	ok, err := s.r.ReturnCopy(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		b, err := s.r.ByID(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, makeErr(ErrNotFound)
		}
		return nil, makeErr(ErrAllCopiesIn)
	}

	// any open ledger row may have been created by a different user; a miss
	// here is not an error
	if _, err := s.ledger.MarkReturned(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, bookID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
