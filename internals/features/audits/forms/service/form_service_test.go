package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditku_backend/internals/databases"
	fmodel "auditku_backend/internals/features/audits/forms/model"
	"auditku_backend/internals/helpers/answer"
	"auditku_backend/internals/observability/metrics"
)

func newTestService(t *testing.T) *FormService {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&fmodel.FormModel{}))

	m, err := metrics.NewWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewFormService(db, time.Minute, m)
}

func kitchenForm(name string) fmodel.FormDefinition {
	yes := answer.NewString("Yes")
	return fmodel.FormDefinition{
		Name:             name,
		Type:             fmodel.FormTypeAudit,
		PassThreshold:    80,
		PartialThreshold: 50,
		Sections: []fmodel.Section{{
			ID: "s1", Title: "Hygiene", Weightage: 100,
			Subsections: []fmodel.Subsection{{
				ID: "s1a", Weightage: 100,
				Questions: []fmodel.Question{
					{ID: "q1", Type: fmodel.QuestionTypeYesNo, Mandatory: true, Scoring: &fmodel.ScoringRule{PassValue: &yes, Weightage: 100}},
				},
			}},
		}},
	}
}

func TestCreateGeneratesUniqueSlugPerOrg(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	org, user := uuid.New(), uuid.New()

	a, err := svc.Create(ctx, org, user, kitchenForm("Kitchen Audit"), nil, true)
	require.NoError(t, err)
	assert.Equal(t, "kitchen-audit", a.FormSlug)

	b, err := svc.Create(ctx, org, user, kitchenForm("Kitchen  audit!"), nil, false)
	require.NoError(t, err)
	assert.Equal(t, "kitchen-audit-2", b.FormSlug)
	assert.False(t, b.FormIsActive)

	c, err := svc.Create(ctx, uuid.New(), user, kitchenForm("Kitchen Audit"), nil, true)
	require.NoError(t, err)
	assert.Equal(t, "kitchen-audit", c.FormSlug, "slug scope is per organisation")

	inactive := false
	rows, total, err := svc.List(ctx, org, ListFilter{Active: &inactive}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, b.FormID, rows[0].FormID)

	_, total, err = svc.List(ctx, org, ListFilter{Search: "KITCHEN"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestCreateRejectsInvalidStructure(t *testing.T) {
	svc := newTestService(t)

	def := kitchenForm("Broken")
	def.Sections = append(def.Sections, def.Sections[0])
	def.PassThreshold = 140

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), def, nil, true)
	var ve *fmodel.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("form_sections[1].id"))
	assert.True(t, ve.Has("form_pass_threshold"))
}

func TestDefinitionCacheAndInvalidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	org := uuid.New()

	row, err := svc.Create(ctx, org, uuid.New(), kitchenForm("Bar Audit"), nil, true)
	require.NoError(t, err)

	def, err := svc.Definition(ctx, org, row.FormID)
	require.NoError(t, err)
	assert.Equal(t, "Bar Audit", def.Name)
	_, err = svc.Definition(ctx, org, row.FormID)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.Metrics.FormCacheLookups.WithLabelValues("hit")))

	updated, err := svc.Update(ctx, org, row.FormID, func(d fmodel.FormDefinition, desc *string, active bool) (fmodel.FormDefinition, *string, bool) {
		d.Name = "Bar Audit v2"
		return d, desc, active
	})
	require.NoError(t, err)
	assert.Equal(t, "bar-audit-v2", updated.FormSlug)

	def, err = svc.Definition(ctx, org, row.FormID)
	require.NoError(t, err)
	assert.Equal(t, "Bar Audit v2", def.Name, "update invalidates cached definition")

	_, err = svc.Definition(ctx, uuid.New(), row.FormID)
	assert.ErrorIs(t, err, ErrFormNotFound)

	require.NoError(t, svc.Delete(ctx, org, row.FormID))
	_, err = svc.Definition(ctx, org, row.FormID)
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, org, row.FormID), ErrFormNotFound)
}
