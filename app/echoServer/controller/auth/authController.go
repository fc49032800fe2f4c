package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"booknexus/app/echoServer/guard"
	"booknexus/model"
	authsvc "booknexus/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new user; the email must be unique
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any "invalid payload or email already registered"
// @Failure      500  {object}  map[string]any
// @Router       /auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data")
		default:
			ct.logErr(c, "register failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"token": token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns a 30-day JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds, authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		default:
			ct.logErr(c, "login failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"token": token,
	})
}

// GET /auth/profile
func (ct *Controller) Profile(c echo.Context) error {
	ident, ok := guard.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	u, err := ct.Svc.Profile(c.Request().Context(), ident.ID)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		ct.logErr(c, "profile failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

// GET /auth/users  (admin)
func (ct *Controller) ListUsers(c echo.Context) error {
	users, err := ct.Svc.ListUsers(c.Request().Context())
	if err != nil {
		ct.logErr(c, "list users failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// DELETE /auth/librarians/:id  (admin)
func (ct *Controller) DeleteLibrarian(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Librarian ID is required")
	}
	actor, ok := guard.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := ct.Svc.DeleteUser(c.Request().Context(), actor.ID, id); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrSelfDelete:
			return echo.NewHTTPError(http.StatusBadRequest, "You cannot delete your own account")
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Librarian not found")
		default:
			ct.logErr(c, "delete librarian failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Librarian deleted successfully"})
}

func (ct *Controller) logErr(c echo.Context, msg string, err error) {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	ct.Log.Error(msg,
		"err", err,
		"req_id", rid,
		"path", c.Path(),
		"method", c.Request().Method,
	)
}
