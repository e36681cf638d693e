package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GateKeyHeader carries the shared floor password on mutating requests
const GateKeyHeader = "X-Gate-Key"

// RequireGateKey checks the shared plaintext gate password. An empty
// configured key disables the gate entirely (open floor).
func RequireGateKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}

			provided := c.Request().Header.Get(GateKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "gate key required",
				})
			}

			return next(c)
		}
	}
}
