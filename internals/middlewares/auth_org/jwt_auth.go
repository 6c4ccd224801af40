package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	helperAuth "auditku_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret string
	// pakai cookie access_token jika tidak ada Bearer
	AllowCookieFallback bool
	// header X-Org-ID boleh memilih org aktif bila token membawa beberapa org_ids
	AllowOrgHeader bool
}

// AuthJWT memverifikasi token HMAC lalu mengisi locals user_id, org_id, roles.
// Token diterbitkan layanan auth eksternal; di sini hanya dibaca.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		c.Locals("jwt_claims", claims)

		// user_id: id / sub / user_id
		userID := firstNonEmpty(strClaim(claims, "id"), strClaim(claims, "sub"), strClaim(claims, "user_id"))
		if _, err := uuid.Parse(userID); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id tidak valid")
		}
		c.Locals(helperAuth.LocUserID, userID)

		orgID, err := resolveOrg(c, claims, o.AllowOrgHeader)
		if err != nil {
			return err
		}
		c.Locals(helperAuth.LocOrgID, orgID)

		roles := readStringSlice(claims["roles"])
		if r := strings.ToLower(strClaim(claims, "role")); r != "" {
			roles = append(roles, r)
		}
		c.Locals(helperAuth.LocRoles, roles)

		return c.Next()
	}
}

// resolveOrg: org_id tunggal, atau pilih dari org_ids via header X-Org-ID.
func resolveOrg(c *fiber.Ctx, claims jwt.MapClaims, allowHeader bool) (string, error) {
	if oid := strClaim(claims, "org_id"); oid != "" {
		if _, err := uuid.Parse(oid); err != nil {
			return "", fiber.NewError(fiber.StatusUnauthorized, "org_id tidak valid")
		}
		return oid, nil
	}

	ids := readStringSlice(claims["org_ids"])
	if len(ids) == 0 {
		return "", fiber.NewError(fiber.StatusForbidden, "Token tidak membawa organisasi")
	}
	if allowHeader {
		if want := strings.TrimSpace(c.Get("X-Org-ID")); want != "" {
			for _, id := range ids {
				if strings.EqualFold(id, want) {
					return id, nil
				}
			}
			return "", fiber.NewError(fiber.StatusForbidden, "Organisasi tidak termasuk dalam token")
		}
	}
	if _, err := uuid.Parse(ids[0]); err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "org_id tidak valid")
	}
	return ids[0], nil
}

func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// []string / []any → []string lower-case, tanpa kosong
func readStringSlice(v any) []string {
	out := make([]string, 0)
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			add(s)
		}
	}
	return out
}
