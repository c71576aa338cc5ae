package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserRole  = "user_role"
)

// JWTProtected returns a middleware that validates bearer tokens and binds the
// caller's identity (id, email, role) to the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "token subject missing")
		}

		role, ok := extractRoleFromClaims(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "token role missing")
		}

		c.Locals(LocalUserID, *userID)
		c.Locals(LocalUserRole, role)
		if email := extractEmailFromClaims(claims); email != "" {
			c.Locals(LocalUserEmail, email)
		}

		return c.Next()
	}
}

// ActorFromCtx rebuilds the authenticated identity bound by JWTProtected.
func ActorFromCtx(c *fiber.Ctx) (models.Actor, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok {
		return models.Actor{}, false
	}

	role, ok := c.Locals(LocalUserRole).(models.Role)
	if !ok {
		return models.Actor{}, false
	}

	email, _ := c.Locals(LocalUserEmail).(string)

	return models.Actor{ID: userID, Email: email, Role: role}, true
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractRoleFromClaims(claims jwt.MapClaims) (models.Role, bool) {
	if value, ok := claims["role"]; ok {
		if str, ok := value.(string); ok {
			return models.ParseRole(str)
		}
	}

	return "", false
}

func extractEmailFromClaims(claims jwt.MapClaims) string {
	if value, ok := claims["email"]; ok {
		if str, ok := value.(string); ok {
			return strings.ToLower(strings.TrimSpace(str))
		}
	}

	return ""
}
