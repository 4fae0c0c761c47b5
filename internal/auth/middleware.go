package auth

import (
	"errors"
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "foodgram/internal/errors"
	"foodgram/internal/log"
)

const (
	contextKey = "auth_claims"
	// TokenLookup accepts both "Bearer <jwt>" and "Token <jwt>" headers.
	TokenLookup = "header:" + echo.HeaderAuthorization + ":Bearer ,header:" + echo.HeaderAuthorization + ":Token "
)

var errTokenRevoked = errors.New("token has been revoked")

// Middleware builds JWT middleware. Required rejects requests without a valid
// access token; Optional lets them through anonymously.
type Middleware struct {
	jwt   *JWTService
	store TokenStoreInterface
}

// NewMiddleware creates the auth middleware factory.
func NewMiddleware(jwt *JWTService, store TokenStoreInterface) *Middleware {
	return &Middleware{jwt: jwt, store: store}
}

// Required rejects unauthenticated requests with 401.
func (m *Middleware) Required() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     contextKey,
		TokenLookup:    TokenLookup,
		ParseTokenFunc: m.parse,
		SuccessHandler: annotateLogContext,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "invalid or missing access token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// Optional resolves the viewer when a valid token is present and otherwise
// continues anonymously.
func (m *Middleware) Optional() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             contextKey,
		TokenLookup:            TokenLookup,
		ParseTokenFunc:         m.parse,
		SuccessHandler:         annotateLogContext,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

func (m *Middleware) parse(c echo.Context, token string) (interface{}, error) {
	claims, err := m.jwt.ValidateKind(token, KindAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := m.store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}
	return claims, nil
}

func annotateLogContext(c echo.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return
	}
	req := c.Request()
	ctx := log.AppendCtx(req.Context(), slog.Uint64("user_id", uint64(claims.UserID)))
	c.SetRequest(req.WithContext(ctx))
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(contextKey).(*Claims)
	return claims, ok && claims != nil
}

// ViewerID returns the authenticated user id, or 0 for anonymous requests.
func ViewerID(c echo.Context) uint {
	if claims, ok := ClaimsFromContext(c); ok {
		return claims.UserID
	}
	return 0
}

// SetClaims stores claims on the context. Used by tests and internal callers.
func SetClaims(c echo.Context, claims *Claims) {
	c.Set(contextKey, claims)
}
