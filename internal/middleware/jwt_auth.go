package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// userContextKey holds the *models.JwtCustomClaims of the authenticated caller.
const userContextKey = "user"

// OptionalJWTAuth authenticates the caller when a token is sent and lets
// anonymous requests through. A malformed or invalid token is still a 401.
func OptionalJWTAuth(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}
			if raw != "" {
				if err := authenticate(c, tokens, raw); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireUser guards single routes inside an OptionalJWTAuth group.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserIDFromContext(c) == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
		}
		return next(c)
	}
}

// ClaimsFromContext returns nil for anonymous requests.
func ClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(userContextKey).(*models.JwtCustomClaims)
	return claims
}

// UserIDFromContext returns 0 for anonymous requests.
func UserIDFromContext(c echo.Context) uint {
	if claims := ClaimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func authenticate(c echo.Context, tokens *auth.TokenService, raw string) error {
	claims, err := tokens.Parse(raw, models.TokenTypeAccess)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Given token not valid for any token type")
	}
	c.Set(userContextKey, claims)
	return nil
}

// bearerToken returns "" when no Authorization header is present.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
