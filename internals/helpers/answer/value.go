// file: internals/helpers/answer/value.go
package answer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind adalah tag dari union Value.
type Kind string

const (
	KindNull   Kind = ""
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "boolean"
	KindList   Kind = "list"
	KindFile   Kind = "file"
)

var ErrUnsupportedValue = errors.New("answer: unsupported value shape")

// FileRef menunjuk file yang sudah diupload oleh collaborator luar.
type FileRef struct {
	FileID string `json:"file_id,omitempty"`
	URL    string `json:"url,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Value: string | number | boolean | list-of-string | file-reference | null.
// Zero value = null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []string
	file FileRef
}

func Null() Value               { return Value{} }
func NewString(s string) Value  { return Value{kind: KindString, str: s} }
func NewNumber(f float64) Value { return Value{kind: KindNumber, num: f} }
func NewBool(b bool) Value      { return Value{kind: KindBool, b: b} }
func NewFile(f FileRef) Value   { return Value{kind: KindFile, file: f} }

func NewList(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Bool() bool    { return v.kind == KindBool && v.b }
func (v Value) File() FileRef { return v.file }

func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// String melakukan string-coerce:
// number → representasi desimal terpendek, bool → "true"/"false",
// list → item digabung koma, file → url (fallback file_id), null → "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return strings.Join(v.list, ",")
	case KindFile:
		if v.file.URL != "" {
			return v.file.URL
		}
		return v.file.FileID
	default:
		return ""
	}
}

// Number melakukan numeric-coerce. ok=false kalau nilainya bukan angka
// (string kosong, bool, list, file, null, NaN/Inf).
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsEmpty: null atau string kosong. List kosong tetap dianggap ada isinya.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// IsBlank dipakai validasi mandatory: null, string whitespace, list kosong, file tanpa referensi.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		return len(v.list) == 0
	case KindFile:
		return v.file.URL == "" && v.file.FileID == ""
	default:
		return false
	}
}

// Same = kesamaan ketat (tag dan isi harus sama).
func (v Value) Same(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindFile:
		return v.file == o.file
	}
	return false
}

// LooseEqual = Same atau sama setelah string-coerce (5 == "5").
func (v Value) LooseEqual(o Value) bool {
	return v.Same(o) || v.String() == o.String()
}

// Strings menormalkan nilai jadi daftar string untuk operator in/not_in:
// list → tiap item, string → split koma, scalar lain → satu item. Semua di-trim.
func (v Value) Strings() []string {
	switch v.kind {
	case KindNull:
		return nil
	case KindList:
		out := make([]string, 0, len(v.list))
		for _, s := range v.list {
			out = append(out, strings.TrimSpace(s))
		}
		return out
	case KindString:
		parts := strings.Split(v.str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return []string{strings.TrimSpace(v.String())}
	}
}

/* =========================
   JSON
========================= */

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindFile:
		return json.Marshal(v.file)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny mengubah hasil decode JSON generik (atau literal Go) jadi Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	case float64:
		return NewNumber(t), nil
	case float32:
		return NewNumber(float64(t)), nil
	case int:
		return NewNumber(float64(t)), nil
	case int64:
		return NewNumber(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return NewNumber(f), nil
	case []string:
		return NewList(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			el, err := FromAny(it)
			if err != nil {
				return Value{}, err
			}
			if el.kind == KindList || el.kind == KindFile {
				return Value{}, fmt.Errorf("%w: nested %s in list", ErrUnsupportedValue, el.kind)
			}
			items = append(items, el.String())
		}
		return NewList(items...), nil
	case FileRef:
		return NewFile(t), nil
	case map[string]any:
		ref := FileRef{}
		if s, ok := t["url"].(string); ok {
			ref.URL = s
		}
		if s, ok := t["file_id"].(string); ok {
			ref.FileID = s
		}
		if s, ok := t["name"].(string); ok {
			ref.Name = s
		}
		if ref.URL == "" && ref.FileID == "" {
			return Value{}, fmt.Errorf("%w: object without url/file_id", ErrUnsupportedValue)
		}
		return NewFile(ref), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
