// Package middleware carries the verified identity boundary: the CRM mints
// JWTs, this service verifies them and hands (accountID, role) to handlers.
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	accountIDKey = "accountID"
	roleKey      = "role"

	tokenTTL     = 24 * time.Hour
	bearerSchema = "Bearer "
)

// Known roles supplied by the CRM.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Claims is the JWT payload shared with the CRM.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed token for an account. The CRM is the normal
// issuer; this exists for tests and local tooling.
func GenerateToken(accountID, role, secret string) (string, error) {
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Authenticate verifies the bearer token and stores the caller's account ID
// and role in request locals. Requests without a valid token get 401.
func Authenticate(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerSchema), claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
		if err != nil || !token.Valid || claims.AccountID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(accountIDKey, claims.AccountID)
		c.Locals(roleKey, claims.Role)
		return c.Next()
	}
}

// RequireRole guards a route group to the listed roles. Must run after
// Authenticate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
}

// AccountID returns the verified caller account ID set by Authenticate.
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(accountIDKey).(string)
	return id
}

// Role returns the verified caller role set by Authenticate.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(roleKey).(string)
	return role
}
