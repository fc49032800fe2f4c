package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"booknexus/app/echoServer/guard"
	"booknexus/model"
	booksvc "booknexus/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// coverUpload extracts the optional multipart coverImage file.
func coverUpload(c echo.Context) (*booksvc.Upload, func(), error) {
	fh, err := c.FormFile("coverImage")
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &booksvc.Upload{Filename: fh.Filename, File: f}, func() { f.Close() }, nil
}

// GET /books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		h.Log.Error("book detail error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, b)
}

// GET /books/search?query=&subject=&researchArea=
func (h *Controller) Search(c echo.Context) error {
	rows, err := h.Svc.Search(c.Request().Context(),
		c.QueryParam("query"), c.QueryParam("subject"), c.QueryParam("researchArea"))
	if err != nil {
		h.Log.Error("book search error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /books/ai-search?query=
func (h *Controller) AISearch(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	rows, err := h.Svc.AISearch(c.Request().Context(), query)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrEmptyCatalog {
			return echo.NewHTTPError(http.StatusNotFound, "No books found in the database")
		}
		h.Log.Error("ai search error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(rows),
		"books": rows,
	})
}

// GET /books/:id/summary
func (h *Controller) Summary(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	summary, err := h.Svc.Summary(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		h.Log.Error("book summary error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}

// POST /books  (admin, multipart)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	cover, closeCover, err := coverUpload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cover image")
	}
	defer closeCover()

	b, err := h.Svc.Create(c.Request().Context(), booksvc.CreateParams{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		ImageURL:        req.ImageURL,
		Subject:         req.Subject,
		ResearchArea:    req.ResearchArea,
		Location:        req.Location,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
		Description:     req.Description,
		Cover:           cover,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBadCounts:
			return echo.NewHTTPError(http.StatusBadRequest, "availableCopies cannot exceed totalCopies")
		case booksvc.ErrISBNTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "A book with this ISBN already exists")
		default:
			h.Log.Error("book create error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /books/:id  (admin, multipart; absent fields keep stored values)
func (h *Controller) Update(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}

	var p booksvc.UpdateParams
	setStr := func(dst **string, key string) {
		if v := c.FormValue(key); v != "" {
			*dst = &v
		}
	}
	setStr(&p.Title, "title")
	setStr(&p.Author, "author")
	setStr(&p.ISBN, "isbn")
	setStr(&p.ImageURL, "imageUrl")
	setStr(&p.Subject, "subject")
	setStr(&p.ResearchArea, "researchArea")
	setStr(&p.Location, "location")
	setStr(&p.Description, "description")

	for key, dst := range map[string]**int64{
		"totalCopies":     &p.TotalCopies,
		"availableCopies": &p.AvailableCopies,
	} {
		if v := c.FormValue(key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+key)
			}
			*dst = &n
		}
	}

	cover, closeCover, err := coverUpload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cover image")
	}
	defer closeCover()
	p.Cover = cover

	b, err := h.Svc.Update(c.Request().Context(), id, p)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		case booksvc.ErrBadCounts:
			return echo.NewHTTPError(http.StatusBadRequest, "availableCopies cannot exceed totalCopies")
		case booksvc.ErrISBNTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "A book with this ISBN already exists")
		default:
			h.Log.Error("book update error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		h.Log.Error("book delete error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book removed"})
}

// PUT /books/:id/checkout
func (h *Controller) Checkout(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	u, ok := guard.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	b, err := h.Svc.Checkout(c.Request().Context(), u.ID, id)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		case booksvc.ErrNoCopies:
			return echo.NewHTTPError(http.StatusBadRequest, "Book is not available")
		default:
			h.Log.Error("book checkout error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Book checked out successfully",
		"book":    b,
	})
}

// PUT /books/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return err
	}
	u, ok := guard.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	b, err := h.Svc.Return(c.Request().Context(), u.ID, id)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		case booksvc.ErrAllCopiesIn:
			return echo.NewHTTPError(http.StatusBadRequest, "All copies are already available")
		default:
			h.Log.Error("book return error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Book returned successfully",
		"book":    b,
	})
}
