package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditku_backend/internals/databases"
	fieldModel "auditku_backend/internals/features/records/fields/model"
	"auditku_backend/internals/features/records/fields/service"
	helper "auditku_backend/internals/helpers"
	helperAuth "auditku_backend/internals/helpers/auth"
)

func newTestApp(t *testing.T, roles ...string) *fiber.App {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&fieldModel.RecordFieldModel{}))

	org := uuid.New()
	ctl := NewFieldController(service.NewFieldService(db))

	app := fiber.New(fiber.Config{ErrorHandler: helper.FromFiberError})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocUserID, uuid.NewString())
		c.Locals(helperAuth.LocOrgID, org.String())
		c.Locals(helperAuth.LocRoles, roles)
		return c.Next()
	})
	app.Get("/records/:entity/fields", ctl.List)
	app.Put("/records/:entity/fields", ctl.Upsert)
	app.Delete("/records/:entity/fields/:key", ctl.Delete)
	app.Post("/records/:entity/field-states", ctl.States)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

const leadFields = `{"fields":[
	{"record_field_key":"country","record_field_label":"Country","record_field_required":true},
	{"record_field_key":"vat_id","record_field_label":"VAT ID","record_field_dependencies":[
		{"name":"eu-only","type":"visibility","field_key":"country","operator":"in","value":["DE","FR"]},
		{"name":"lock","type":"readonly","logic":"OR","conditions":[
			{"field_key":"stage","operator":"equals","value":"won"},
			{"field_key":"amount","operator":"gt","value":10000}
		]}
	]}
]}`

func TestFieldEndpoints(t *testing.T) {
	app := newTestApp(t, helperAuth.RoleAdmin)

	code, body := call(t, app, http.MethodPut, "/records/Lead/fields", leadFields)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["data"], 2)

	code, body = call(t, app, http.MethodGet, "/records/lead/fields", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 2)

	code, body = call(t, app, http.MethodPost, "/records/lead/field-states",
		`{"values":{"country":"FR","amount":"25000"},"keys":["vat_id"]}`)
	require.Equal(t, http.StatusOK, code, body)
	states := body["data"].(map[string]any)
	vat := states["vat_id"].(map[string]any)
	assert.Equal(t, true, vat["visible"])
	assert.Equal(t, true, vat["readonly"])
	assert.Equal(t, false, vat["required"])

	code, _ = call(t, app, http.MethodPost, "/records/lead/field-states", `{"keys":["missing"]}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, app, http.MethodDelete, "/records/lead/fields/vat_id", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, app, http.MethodDelete, "/records/lead/fields/vat_id", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFieldUpsertValidation(t *testing.T) {
	app := newTestApp(t, helperAuth.RoleAdmin)

	code, body := call(t, app, http.MethodPut, "/records/lead/fields",
		`{"fields":[{"record_field_key":"a","record_field_label":"A"},{"record_field_key":"a","record_field_label":"A2"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["errors"], "fields[1].record_field_key")

	code, body = call(t, app, http.MethodPut, "/records/lead/fields",
		`{"fields":[{"record_field_key":"a","record_field_label":"A","record_field_dependencies":[{"name":"x","type":"hide","field_key":"b","operator":"equals"}]}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["errors"], "fields[0].record_field_dependencies[0]")

	code, _ = call(t, app, http.MethodPut, "/records/lead/fields", `{"fields":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = call(t, app, http.MethodGet, "/records/bad%20entity/fields", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFieldUpsertRequiresAdmin(t *testing.T) {
	app := newTestApp(t, helperAuth.RoleMember)

	code, _ := call(t, app, http.MethodPut, "/records/lead/fields", leadFields)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, app, http.MethodGet, "/records/lead/fields", "")
	assert.Equal(t, http.StatusOK, code)
}
