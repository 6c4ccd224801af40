package helper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const DefaultSlugMaxLen = 160

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify mengubah teks bebas jadi slug [a-z0-9-], hilangkan diakritik,
// kompres "-", trim ujung, enforce maxLen, fallback "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}
	s = strings.ToLower(strings.TrimSpace(s))

	// é → e, dll
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > maxLen {
		s = strings.Trim(string([]rune(s)[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

// SlugOptions menentukan cara cek keunikan slug di DB.
type SlugOptions struct {
	Table      string
	SlugColumn string
	// kosongkan bila tabel tanpa soft-delete
	SoftDeleteColumn string
	// scope tenant, mis. map[string]any{"form_org_id": orgID}
	Filters map[string]any
	// id row yang sedang di-update (tidak dihitung bentrok)
	ExcludeColumn string
	ExcludeValue  any
	MaxLen        int
	DefaultBase   string
}

// GenerateUniqueSlug: slug unik case-insensitive dalam scope Filters.
// base → base-2 → base-3 ... lalu fallback suffix acak pendek.
func GenerateUniqueSlug(ctx context.Context, db *gorm.DB, opts SlugOptions, base string) (string, error) {
	if opts.Table == "" || opts.SlugColumn == "" {
		return "", errors.New("slug options: table/slug column required")
	}
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}

	root := Slugify(base, maxLen)
	if root == "item" && strings.TrimSpace(opts.DefaultBase) != "" {
		root = Slugify(opts.DefaultBase, maxLen)
	}

	candidate := root
	for i := 0; i < 25; i++ {
		taken, err := slugTaken(ctx, db, opts, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i+2)
		candidate = trimForSuffix(root, suffix, maxLen) + suffix
	}

	r := fmt.Sprintf("-%x", time.Now().UnixNano()&0xffff)
	return trimForSuffix(root, r, maxLen) + r, nil
}

func slugTaken(ctx context.Context, db *gorm.DB, opts SlugOptions, candidate string) (bool, error) {
	q := db.WithContext(ctx).
		Table(opts.Table).
		Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", opts.SlugColumn), candidate)

	for k, v := range opts.Filters {
		q = q.Where(fmt.Sprintf("%s = ?", k), v)
	}
	if opts.SoftDeleteColumn != "" {
		q = q.Where(fmt.Sprintf("%s IS NULL", opts.SoftDeleteColumn))
	}
	if opts.ExcludeColumn != "" && opts.ExcludeValue != nil {
		q = q.Where(fmt.Sprintf("%s <> ?", opts.ExcludeColumn), opts.ExcludeValue)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// trimForSuffix memotong base agar base+suffix <= maxLen.
func trimForSuffix(base, suffix string, maxLen int) string {
	keep := maxLen - len(suffix)
	if keep < 1 {
		return "x"
	}
	rs := []rune(base)
	if len(rs) > keep {
		rs = rs[:keep]
	}
	out := strings.Trim(string(rs), "-")
	if out == "" {
		out = "x"
	}
	return out
}
