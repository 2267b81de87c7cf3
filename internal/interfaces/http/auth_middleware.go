package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/pkg/jwt"
)

// Locals keys para UserID, StoreID y Role en Fiber.
const (
	LocalUserID  = "user_id"
	LocalStoreID = "store_id"
	LocalRole    = "role"
)

// Roles reconocidos en el claim "role".
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// AuthMiddleware valida el Bearer Token JWT (firma, expiración y emisor si issuer no está vacío)
// y extrae UserID, StoreID y Role a c.Locals.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalStoreID, id.StoreID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe ir DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := strings.ToLower(GetRole(c))
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetStoreID devuelve la tienda del token.
func GetStoreID(c *fiber.Ctx) string {
	return localString(c, LocalStoreID)
}

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
