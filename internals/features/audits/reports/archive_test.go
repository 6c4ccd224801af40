package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memStore) ObjectKey(parts ...string) string { return path.Join(append([]string{"reports"}, parts...)...) }

func (m *memStore) UploadStream(_ context.Context, key string, r io.Reader, contentType string, _ bool) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStore) PublicURL(key string) string { return "https://cdn.example.test/" + key }

func TestJSONArchiver(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}, types: map[string]string{}}
	arch := NewJSONArchiver(store)
	arch.Now = func() time.Time { return now }

	rep := Build(sampleForm(), sampleResponse(), now)
	url, err := arch.Render(context.Background(), rep)
	require.NoError(t, err)

	key := "reports/" + rep.FormID.String() + "/" + rep.ResponseID.String() + "/1775044800.json"
	assert.Equal(t, "https://cdn.example.test/"+key, url)
	require.Contains(t, store.objects, key)
	assert.Equal(t, "application/json", store.types[key])

	var stored map[string]any
	require.NoError(t, json.Unmarshal(store.objects[key], &stored))
	assert.Contains(t, stored, "compliancePercentage")
	assert.Contains(t, stored, "passRate")

	store.err = errors.New("bucket unreachable")
	res := Render(context.Background(), arch, rep)
	assert.Contains(t, res.Error, "bucket unreachable")
	assert.Empty(t, res.Location)
}
