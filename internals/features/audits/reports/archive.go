package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
)

// ObjectStore = bagian OSSService yang dipakai arsip laporan.
type ObjectStore interface {
	ObjectKey(parts ...string) string
	UploadStream(ctx context.Context, key string, r io.Reader, contentType string, inline bool) error
	PublicURL(key string) string
}

// JSONArchiver menyimpan report sebagai JSON di object storage dan
// mengembalikan URL publiknya. Renderer PDF/Excel bisa membaca arsip ini.
type JSONArchiver struct {
	Store ObjectStore
	Now   func() time.Time
}

func NewJSONArchiver(store ObjectStore) *JSONArchiver {
	return &JSONArchiver{Store: store, Now: time.Now}
}

// Key: <form_id>/<response_id>/<unix>.json
func (a *JSONArchiver) key(r Report) string {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return a.Store.ObjectKey(r.FormID.String(), r.ResponseID.String(),
		fmt.Sprintf("%d.json", now().UTC().Unix()))
}

func (a *JSONArchiver) Render(ctx context.Context, r Report) (string, error) {
	body, err := sonic.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	key := a.key(r)
	if err := a.Store.UploadStream(ctx, key, bytes.NewReader(body), "application/json", true); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return a.Store.PublicURL(key), nil
}
