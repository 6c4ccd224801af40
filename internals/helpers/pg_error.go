package helper

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// PGCode mengambil SQLSTATE dari error pgx maupun lib/pq.
func PGCode(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return PGCode(err) == pgUniqueViolation
}

// MapPGError: 23505 → 409, 23503/23514 → 400, lainnya 500.
func MapPGError(err error) (int, string) {
	switch PGCode(err) {
	case pgUniqueViolation:
		return http.StatusConflict, "Data duplikat (unique violation)."
	case pgForeignKeyViolation:
		return http.StatusBadRequest, "Referensi tidak ditemukan (FK violation)."
	case pgCheckViolation:
		return http.StatusBadRequest, "Data melanggar constraint (check violation)."
	}
	return http.StatusInternalServerError, err.Error()
}

func WritePGError(c *fiber.Ctx, err error) error {
	code, msg := MapPGError(err)
	return JsonError(c, code, msg)
}
