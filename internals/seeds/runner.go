package seeds

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	formService "auditku_backend/internals/features/audits/forms/service"
	formSeeds "auditku_backend/internals/seeds/forms"
)

const FormTemplatesFile = "internals/seeds/forms/data_form_templates.json"

// RunAllSeeds mengisi data awal untuk satu org (dipanggil bila SEED_ORG_ID diset).
func RunAllSeeds(ctx context.Context, db *gorm.DB, forms *formService.FormService, orgID uuid.UUID) {
	//* Form templates
	n, err := formSeeds.SeedFormTemplatesFromJSON(ctx, db, forms, orgID, uuid.Nil, FormTemplatesFile)
	if err != nil {
		log.Printf("❌ Seed form templates gagal: %v", err)
		return
	}
	log.Printf("✅ Seed selesai: %d form template dibuat untuk org %s", n, orgID)
}
