// Package dbtypes berisi tipe kolom yang portable antara postgres & sqlite.
package dbtypes

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TextArray = text[] di postgres (format literal pq.StringArray),
// text biasa di sqlite (isi tetap literal array "{a,b}").
type TextArray []string

func (a TextArray) Value() (driver.Value, error) {
	if a == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(a).Value()
}

func (a *TextArray) Scan(src any) error {
	return (*pq.StringArray)(a).Scan(src)
}

func (TextArray) GormDataType() string { return "text[]" }

func (TextArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Strings: selalu non-nil.
func (a TextArray) Strings() []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}
