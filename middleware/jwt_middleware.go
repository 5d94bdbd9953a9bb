// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	AccountID   string `json:"accountId"`
	Email       string `json:"email"`
	AccountType string `json:"accountType"` // "affiliate", "master_affiliate" or "admin"
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	return nil
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return secret
}

// JWTMiddleware returns a configured JWT middleware
func JWTMiddleware() echo.MiddlewareFunc {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Printf("Warning: JWT_SECRET environment variable is not set")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(secret),
		Claims:     &JwtCustomClaims{},
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*JwtCustomClaims)

			c.Set("accountId", claims.AccountID)
			c.Set("accountType", claims.AccountType)
			c.Set("email", claims.Email)
		},
		ErrorHandler: func(err error) error {
			log.Printf("JWT middleware error: %v", err)
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
		},
	})
}

// AdminOnly rejects requests whose token is not an admin session.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if accountType, _ := c.Get("accountType").(string); accountType != "admin" {
				return echo.NewHTTPError(echo.ErrForbidden.Code, "Admin access required")
			}
			return next(c)
		}
	}
}

// ExtractAccountID returns the authenticated account ID from the context.
func ExtractAccountID(c echo.Context) (string, error) {
	if accountID, ok := c.Get("accountId").(string); ok && accountID != "" {
		return accountID, nil
	}

	user := c.Get("user")
	if user == nil {
		return "", errors.New("invalid token")
	}
	token, ok := user.(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token type")
	}
	if claims, ok := token.Claims.(*JwtCustomClaims); ok {
		return claims.AccountID, nil
	}
	return "", errors.New("invalid account ID in token")
}

// ExtractAccountType returns the authenticated account type from the context.
func ExtractAccountType(c echo.Context) string {
	if accountType, ok := c.Get("accountType").(string); ok {
		return accountType
	}
	return ""
}
