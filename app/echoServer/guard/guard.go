// Package guard resolves bearer tokens to identities and enforces roles.
package guard

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"booknexus/model"
)

const identityKey = "identity"

// UserLoader looks up the user a verified token refers to.
type UserLoader interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// TokenVerifier checks the Authorization bearer token's signature and
// expiry. Missing and invalid tokens both fail 401; no store access happens
// here.
func TokenVerifier(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		},
	})
}

// Identity loads the user bound to the verified token and attaches it to the
// request context. A token whose user no longer exists fails 401 instead of
// letting the request continue authenticated as nobody.
func Identity(users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			u, err := users.ByID(c.Request().Context(), int64(sub))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			if u == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			c.Set(identityKey, u)
			return next(c)
		}
	}
}

// Admin requires an identity attached by Identity with the admin role.
// It performs no token verification of its own.
func Admin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok || u.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "not authorized as an admin")
		}
		return next(c)
	}
}

// CurrentUser returns the identity attached by Identity, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(identityKey).(*model.User)
	return u, ok && u != nil
}
