package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	formService "auditku_backend/internals/features/audits/forms/service"
)

// FormTemplateSeed = satu template form di file JSON (bentuk sama dengan payload create).
type FormTemplateSeed struct {
	FormName             string           `json:"form_name"`
	FormType             fmodel.FormType  `json:"form_type"`
	FormDescription      *string          `json:"form_description"`
	FormSections         []fmodel.Section `json:"form_sections"`
	FormPassThreshold    float64          `json:"form_pass_threshold"`
	FormPartialThreshold float64          `json:"form_partial_threshold"`
	FormApprovalRequired bool             `json:"form_approval_required"`
}

func (s FormTemplateSeed) Definition() fmodel.FormDefinition {
	return fmodel.FormDefinition{
		Name:             s.FormName,
		Type:             s.FormType,
		Sections:         s.FormSections,
		PassThreshold:    s.FormPassThreshold,
		PartialThreshold: s.FormPartialThreshold,
		ApprovalRequired: s.FormApprovalRequired,
	}
}

func LoadFormTemplates(filePath string) ([]FormTemplateSeed, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("baca file seed: %w", err)
	}
	var data []FormTemplateSeed
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("decode seed JSON: %w", err)
	}
	return data, nil
}

// SeedFormTemplatesFromJSON membuat template form untuk satu org.
// Form dengan nama sama di org tersebut dilewati; jumlah yang dibuat dikembalikan.
func SeedFormTemplatesFromJSON(ctx context.Context, db *gorm.DB, forms *formService.FormService, orgID, createdBy uuid.UUID, filePath string) (int, error) {
	log.Println("📥 Membaca file:", filePath)

	data, err := LoadFormTemplates(filePath)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range data {
		var n int64
		if err := db.WithContext(ctx).Model(&fmodel.FormModel{}).
			Where("form_org_id = ? AND form_name = ?", orgID, item.FormName).
			Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			log.Printf("ℹ️ Form %q sudah ada, lewati...", item.FormName)
			continue
		}

		if _, err := forms.Create(ctx, orgID, createdBy, item.Definition(), item.FormDescription, true); err != nil {
			log.Printf("❌ Gagal insert form %q: %v", item.FormName, err)
			return created, fmt.Errorf("seed form %q: %w", item.FormName, err)
		}
		log.Printf("✅ Berhasil insert form %q", item.FormName)
		created++
	}
	return created, nil
}
