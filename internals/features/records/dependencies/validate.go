package dependencies

import (
	"fmt"
	"strings"
)

func (o Operator) Known() bool {
	switch Operator(strings.ToLower(strings.TrimSpace(string(o)))) {
	case OpEquals, OpNotEquals, OpIn, OpNotIn, OpExists,
		OpGt, OpLt, OpGte, OpLte, OpContains:
		return true
	}
	return false
}

func (t Type) Known() bool {
	switch Type(strings.ToLower(strings.TrimSpace(string(t)))) {
	case TypeVisibility, TypeReadonly, TypeRequired, TypePicklist, TypePopup:
		return true
	}
	return false
}

// Problems mengembalikan daftar kesalahan struktural rule (kosong = valid).
// Evaluate tetap fail-closed untuk operator asing; ini hanya untuk menolak
// definisi yang jelas salah saat disimpan.
func (d Dependency) Problems() []string {
	var out []string
	if strings.TrimSpace(d.Name) == "" {
		out = append(out, "name wajib diisi")
	}
	if !d.Type.Known() {
		out = append(out, fmt.Sprintf("type %q tidak dikenal", d.Type))
	}
	if d.Conditions == nil {
		if strings.TrimSpace(d.FieldKey) == "" {
			out = append(out, "field_key wajib diisi (atau kirim conditions)")
		}
		if !d.Operator.Known() {
			out = append(out, fmt.Sprintf("operator %q tidak dikenal", d.Operator))
		}
	}
	for i, c := range d.Conditions {
		if strings.TrimSpace(c.FieldKey) == "" {
			out = append(out, fmt.Sprintf("conditions[%d].field_key wajib diisi", i))
		}
		if !c.Operator.Known() {
			out = append(out, fmt.Sprintf("conditions[%d].operator %q tidak dikenal", i, c.Operator))
		}
	}
	switch d.NormalizedType() {
	case TypePicklist:
		if len(normalizeOptions(d.Options)) == 0 {
			out = append(out, "picklist wajib punya options")
		}
	case TypePopup:
		if len(d.Fields) == 0 {
			out = append(out, "popup wajib punya fields")
		}
	}
	return out
}
