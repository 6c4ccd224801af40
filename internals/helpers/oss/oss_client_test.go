package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyAndPublicURL(t *testing.T) {
	s := &OSSService{Endpoint: "https://oss-ap-southeast-5.aliyuncs.com", BucketName: "auditku", Prefix: "reports"}

	key := s.ObjectKey("/form-1/", "", "resp-1", "10.json")
	assert.Equal(t, "reports/form-1/resp-1/10.json", key)
	assert.Equal(t, "https://auditku.oss-ap-southeast-5.aliyuncs.com/reports/form-1/resp-1/10.json", s.PublicURL(key))
	assert.Empty(t, s.PublicURL(""))

	s.PublicBase = "https://cdn.auditku.test/"
	assert.Equal(t, "https://cdn.auditku.test/"+key, s.PublicURL(key))
}

func TestExtractKeyFromPublicURL(t *testing.T) {
	key, err := ExtractKeyFromPublicURL("https://cdn.auditku.test/reports/a.json", "https://cdn.auditku.test")
	require.NoError(t, err)
	assert.Equal(t, "reports/a.json", key)

	key, err = ExtractKeyFromPublicURL("https://auditku.oss.aliyuncs.com/reports/b.json", "")
	require.NoError(t, err)
	assert.Equal(t, "reports/b.json", key)

	_, err = ExtractKeyFromPublicURL("", "")
	assert.Error(t, err)
	_, err = ExtractKeyFromPublicURL("https://host-only/", "")
	assert.Error(t, err)
}

func TestConfigured(t *testing.T) {
	t.Setenv("ALI_OSS_ENDPOINT", "")
	assert.False(t, Configured())

	t.Setenv("ALI_OSS_ENDPOINT", "oss.example")
	t.Setenv("ALI_OSS_ACCESS_KEY", "ak")
	t.Setenv("ALI_OSS_SECRET_KEY", "sk")
	t.Setenv("ALI_OSS_BUCKET", "b")
	assert.True(t, Configured())
}
