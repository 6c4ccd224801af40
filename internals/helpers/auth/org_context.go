// file: internals/helpers/auth/org_context.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Key c.Locals yang diisi middleware AuthJWT.
const (
	LocUserID = "user_id" // string UUID
	LocOrgID  = "org_id"  // string UUID
	LocRoles  = "roles"   // []string (lower-case)
	LocReqID  = "reqid"
)

const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleAuditor = "auditor"
	RoleManager = "manager"
	RoleMember  = "member"
)

func parseUUIDLocal(c *fiber.Ctx, key, label string) (uuid.UUID, error) {
	raw, _ := c.Locals(key).(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, label+" tidak ditemukan di token")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, label+" tidak valid")
	}
	return id, nil
}

// GetUserID: user aktif dari token.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return parseUUIDLocal(c, LocUserID, "user_id")
}

// GetOrgID: organisasi aktif (tenant) dari token.
func GetOrgID(c *fiber.Ctx) (uuid.UUID, error) {
	return parseUUIDLocal(c, LocOrgID, "org_id")
}

func Roles(c *fiber.Ctx) []string {
	rs, _ := c.Locals(LocRoles).([]string)
	return rs
}

// HasAnyRole: owner selalu lolos.
func HasAnyRole(c *fiber.Ctx, roles ...string) bool {
	have := Roles(c)
	for _, h := range have {
		if h == RoleOwner {
			return true
		}
		for _, want := range roles {
			if h == want {
				return true
			}
		}
	}
	return false
}

// RequireRole dipakai di controller: 403 bila tidak punya salah satu role.
func RequireRole(c *fiber.Ctx, roles ...string) error {
	if HasAnyRole(c, roles...) {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, "Akses ditolak: butuh role "+strings.Join(roles, "/"))
}
