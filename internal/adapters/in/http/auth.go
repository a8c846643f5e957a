package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoActor      = errors.New("request has no authenticated actor")
)

// Authenticate resolves the actor id from the `sub` claim of an HS256 JWT.
// The token comes from the Authorization header, or from the access_token
// query parameter for WebSocket handshakes.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return unauthorized(c, err)
			}
			actor, err := ParseToken(secret, raw)
			if err != nil {
				return unauthorized(c, err)
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the actor set by Authenticate.
func ActorFrom(c echo.Context) (kernel.UUID, error) {
	actor, ok := c.Get(actorKey).(kernel.UUID)
	if !ok {
		return kernel.UUID{}, ErrNoActor
	}
	return actor, nil
}

// ParseToken validates raw and returns its subject.
func ParseToken(secret, raw string) (kernel.UUID, error) {
	if secret == "" {
		return kernel.UUID{}, errors.New("jwt secret is empty")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return kernel.UUID{}, err
	}
	if !token.Valid {
		return kernel.UUID{}, errors.New("invalid token")
	}
	return kernel.UUIDFromString(claims.Subject)
}

// IssueToken signs a token for subject valid for ttl.
func IssueToken(secret string, subject kernel.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if q := c.QueryParam("access_token"); q != "" {
			return q, nil
		}
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, Error{
		Status:  http.StatusUnauthorized,
		Code:    "unauthenticated",
		Message: err.Error(),
	})
}
