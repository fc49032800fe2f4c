package booksvc_test

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"booknexus/model"
	booksvc "booknexus/service/book"
)

// fakeRepo is an in-memory catalog store whose CheckoutCopy/ReturnCopy
// behave like the guarded single-statement updates in the real repository.
type fakeRepo struct {
	books  map[int64]*model.Book
	nextID int64
}

func newFakeRepo(books ...model.Book) *fakeRepo {
	r := &fakeRepo{books: map[int64]*model.Book{}}
	for _, b := range books {
		r.nextID++
		cp := b
		cp.ID = r.nextID
		r.books[cp.ID] = &cp
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, b *model.Book) error {
	for _, ex := range r.books {
		if ex.ISBN == b.ISBN {
			return fmt.Errorf("duplicate isbn %s", b.ISBN)
		}
	}
	r.nextID++
	b.ID = r.nextID
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, b *model.Book) error {
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	_, ok := r.books[id]
	delete(r.books, id)
	return ok, nil
}

func (r *fakeRepo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]model.Book, error) {
	out := make([]model.Book, 0, len(r.books))
	for id := int64(1); id <= r.nextID; id++ {
		if b, ok := r.books[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) Search(ctx context.Context, query, subject, researchArea string) ([]model.Book, error) {
	contains := func(hay, needle string) bool {
		return strings.Contains(strings.ToLower(hay), strings.ToLower(needle))
	}
	all, _ := r.List(ctx)
	var out []model.Book
	for _, b := range all {
		if query != "" && !contains(b.Title, query) && !contains(b.Author, query) && !contains(b.ISBN, query) {
			continue
		}
		if subject != "" && !contains(b.Subject, subject) {
			continue
		}
		if researchArea != "" && !contains(b.ResearchArea, researchArea) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeRepo) CheckoutCopy(ctx context.Context, bookID int64) (bool, error) {
	b, ok := r.books[bookID]
	if !ok || b.AvailableCopies <= 0 {
		return false, nil
	}
	b.AvailableCopies--
	return true, nil
}

func (r *fakeRepo) ReturnCopy(ctx context.Context, bookID int64) (bool, error) {
	b, ok := r.books[bookID]
	if !ok || b.AvailableCopies >= b.TotalCopies {
		return false, nil
	}
	b.AvailableCopies++
	return true, nil
}

type fakeLedger struct {
	inserts []string
	returns []string
}

func (l *fakeLedger) Insert(ctx context.Context, entry *model.Checkout) error {
	entry.ID = int64(len(l.inserts) + 1)
	l.inserts = append(l.inserts, fmt.Sprintf("%d:%d", entry.UserID, entry.BookID))
	return nil
}

func (l *fakeLedger) MarkReturned(ctx context.Context, userID, bookID int64) (bool, error) {
	l.returns = append(l.returns, fmt.Sprintf("%d:%d", userID, bookID))
	return true, nil
}

type fakeCovers struct {
	saved   int
	removed []string
}

func (cv *fakeCovers) Save(filename string, src io.Reader) (string, error) {
	cv.saved++
	return fmt.Sprintf("/uploads/covers/fake-%d.png", cv.saved), nil
}

func (cv *fakeCovers) Remove(publicPath string) error {
	if strings.HasPrefix(publicPath, "/uploads/covers/") {
		cv.removed = append(cv.removed, publicPath)
	}
	return nil
}

type fakeAI struct {
	fn func(prompt string) (string, error)
}

func (a *fakeAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return a.fn(prompt)
}

func newService(r *fakeRepo) (booksvc.Service, *fakeLedger, *fakeCovers) {
	l := &fakeLedger{}
	cv := &fakeCovers{}
	ai := &fakeAI{fn: func(string) (string, error) { return "", fmt.Errorf("unused") }}
	return booksvc.New(r, l, cv, ai), l, cv
}

func book(title, author, isbn string, total, available int64) model.Book {
	return model.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Subject:         "Fiction",
		ResearchArea:    "Literature",
		Location:        "A1",
		TotalCopies:     total,
		AvailableCopies: available,
	}
}

// --- checkout / return ---

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 2, 2))
	svc, ledger, _ := newService(r)

	b, err := svc.Checkout(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), b.AvailableCopies)
	require.Equal(t, []string{"10:1"}, ledger.inserts)
}

func TestCheckout_NoCopies(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 2, 0))
	svc, ledger, _ := newService(r)

	_, err := svc.Checkout(ctx, 10, 1)
	require.Error(t, err)
	require.Equal(t, booksvc.ErrNoCopies, booksvc.Code(err))
	require.Empty(t, ledger.inserts)

	b, _ := r.ByID(ctx, 1)
	require.Equal(t, int64(0), b.AvailableCopies, "counters unchanged on conflict")
}

func TestCheckout_NotFound(t *testing.T) {
	svc, _, _ := newService(newFakeRepo())
	_, err := svc.Checkout(context.Background(), 10, 99)
	require.Equal(t, booksvc.ErrNotFound, booksvc.Code(err))
}

func TestReturn_Success(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 2, 1))
	svc, ledger, _ := newService(r)

	b, err := svc.Return(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), b.AvailableCopies)
	require.Equal(t, []string{"10:1"}, ledger.returns)
}

func TestReturn_AllCopiesIn(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 2, 2))
	svc, _, _ := newService(r)

	_, err := svc.Return(ctx, 10, 1)
	require.Equal(t, booksvc.ErrAllCopiesIn, booksvc.Code(err))

	b, _ := r.ByID(ctx, 1)
	require.Equal(t, int64(2), b.AvailableCopies, "counters unchanged on conflict")
}

func TestReturn_NotFound(t *testing.T) {
	svc, _, _ := newService(newFakeRepo())
	_, err := svc.Return(context.Background(), 10, 99)
	require.Equal(t, booksvc.ErrNotFound, booksvc.Code(err))
}

// TestTransitionInvariant drives random checkout/return sequences over random
// starting states and asserts 0 <= available <= total after every transition.
func TestTransitionInvariant(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 25; trial++ {
		total := rng.Int63n(6)
		available := int64(0)
		if total > 0 {
			available = rng.Int63n(total + 1)
		}
		r := newFakeRepo(book("Dune", "Herbert", "111", total, available))
		svc, _, _ := newService(r)

		for step := 0; step < 200; step++ {
			before, _ := r.ByID(ctx, 1)

			var err error
			if rng.Intn(2) == 0 {
				_, err = svc.Checkout(ctx, 10, 1)
				if before.AvailableCopies > 0 {
					require.NoError(t, err)
				} else {
					require.Equal(t, booksvc.ErrNoCopies, booksvc.Code(err))
				}
			} else {
				_, err = svc.Return(ctx, 10, 1)
				if before.AvailableCopies < before.TotalCopies {
					require.NoError(t, err)
				} else {
					require.Equal(t, booksvc.ErrAllCopiesIn, booksvc.Code(err))
				}
			}

			after, _ := r.ByID(ctx, 1)
			require.GreaterOrEqual(t, after.AvailableCopies, int64(0))
			require.LessOrEqual(t, after.AvailableCopies, after.TotalCopies)
		}
	}
}

// --- admin mutation ---

func TestCreate_BadCounts(t *testing.T) {
	svc, _, _ := newService(newFakeRepo())
	_, err := svc.Create(context.Background(), booksvc.CreateParams{
		Title: "Dune", Author: "Herbert", ISBN: "111",
		TotalCopies: 1, AvailableCopies: 2,
	})
	require.Equal(t, booksvc.ErrBadCounts, booksvc.Code(err))
}

func TestCreate_WithCover(t *testing.T) {
	svc, _, covers := newService(newFakeRepo())
	b, err := svc.Create(context.Background(), booksvc.CreateParams{
		Title: "Dune", Author: "Herbert", ISBN: "111",
		TotalCopies: 1, AvailableCopies: 1,
		Cover: &booksvc.Upload{Filename: "cover.png", File: strings.NewReader("img")},
	})
	require.NoError(t, err)
	require.Equal(t, "/uploads/covers/fake-1.png", b.ImageURL)
	require.Equal(t, 1, covers.saved)
}

func TestUpdate_Partial(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 3, 2))
	svc, _, _ := newService(r)

	title := "Dune Messiah"
	b, err := svc.Update(ctx, 1, booksvc.UpdateParams{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", b.Title)
	require.Equal(t, "Herbert", b.Author, "absent fields keep stored values")
	require.Equal(t, int64(3), b.TotalCopies)
	require.Equal(t, int64(2), b.AvailableCopies)
}

func TestUpdate_BadCounts(t *testing.T) {
	ctx := context.Background()
	r := newFakeRepo(book("Dune", "Herbert", "111", 3, 2))
	svc, _, _ := newService(r)

	total := int64(1)
	_, err := svc.Update(ctx, 1, booksvc.UpdateParams{TotalCopies: &total})
	require.Equal(t, booksvc.ErrBadCounts, booksvc.Code(err))
}

func TestUpdate_ReplacesOwnedCover(t *testing.T) {
	ctx := context.Background()
	b := book("Dune", "Herbert", "111", 1, 1)
	b.ImageURL = "/uploads/covers/old.png"
	r := newFakeRepo(b)
	svc, _, covers := newService(r)

	got, err := svc.Update(ctx, 1, booksvc.UpdateParams{
		Cover: &booksvc.Upload{Filename: "new.png", File: strings.NewReader("img")},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/uploads/covers/old.png"}, covers.removed)
	require.Equal(t, "/uploads/covers/fake-1.png", got.ImageURL)
}

func TestDelete_RemovesOwnedCover(t *testing.T) {
	ctx := context.Background()
	b := book("Dune", "Herbert", "111", 1, 1)
	b.ImageURL = "/uploads/covers/old.png"
	r := newFakeRepo(b)
	svc, _, covers := newService(r)

	require.NoError(t, svc.Delete(ctx, 1))
	require.Equal(t, []string{"/uploads/covers/old.png"}, covers.removed)

	got, _ := r.ByID(ctx, 1)
	require.Nil(t, got)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newService(newFakeRepo())
	err := svc.Delete(context.Background(), 99)
	require.Equal(t, booksvc.ErrNotFound, booksvc.Code(err))
}

// --- search ---

func TestSearch(t *testing.T) {
	ctx := context.Background()
	dune := book("Dune", "Herbert", "111", 1, 1)
	orwell := book("1984", "Orwell", "222", 1, 1)
	orwell.Subject = "Dystopia"
	r := newFakeRepo(dune, orwell)
	svc, _, _ := newService(r)

	got, err := svc.Search(ctx, "dune", "", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Dune", got[0].Title)

	got, err = svc.Search(ctx, "", "Fiction", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Dune", got[0].Title)

	got, err = svc.Search(ctx, "orwell", "Dystopia", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1984", got[0].Title)
}
