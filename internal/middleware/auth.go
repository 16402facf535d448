package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/safetrace/safetrace-backend-go/internal/auth"
	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
	"github.com/safetrace/safetrace-backend-go/pkg/response"
)

const claimsKey = "auth_claims"

// Auth validates the bearer token of a request. With required unset,
// anonymous requests pass through but invalid tokens are still rejected.
// A nil token manager disables authentication.
func Auth(tokens *auth.TokenManager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" && !required {
			c.Next()
			return
		}

		claims, err := tokens.Validate(header)
		if err != nil {
			response.Fail(c, apperrors.ErrUnauthorized.WithCause(err))
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the validated claims of the request, if any
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
