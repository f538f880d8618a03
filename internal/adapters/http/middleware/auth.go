package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/tokenverify"
	res "github.com/abhigupta0507/NadiRakshak-Backend/pkg/http"
)

const UserIDKey = "user_id"

type AuthMiddleware struct {
	parser tokenverify.Parser
	now    func() time.Time
}

func NewAuthMiddleware(parser tokenverify.Parser) *AuthMiddleware {
	return &AuthMiddleware{parser: parser, now: time.Now}
}

// Handler requires a bearer access token and stores its subject under UserIDKey.
func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := tokenverify.FromBearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing token", res.RequestID(c), nil)
		}
		result, err := tokenverify.Verify(m.parser, token, m.now)
		if err != nil {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", err.Error(), res.RequestID(c), nil)
		}
		c.Set(UserIDKey, result.UserID)
		return next(c)
	}
}

// UserID returns the authenticated subject, or "" outside the auth middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
