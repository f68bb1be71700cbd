package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradercopilot/swingdash/internal/core"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "reports/1/a.md", "reports/1/a.md"},
		{"swingdash", "reports/1/a.md", "swingdash/reports/1/a.md"},
		{"swingdash/", "reports/1/a.md", "swingdash/reports/1/a.md"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.TrimSuffix(tt.prefix, "/")}
		assert.Equal(t, tt.want, s.key(tt.path), "prefix %q", tt.prefix)
		assert.Equal(t, tt.path, s.relative(s.key(tt.path)))
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, core.ErrConfigMissing)

	s, err := NewS3(S3Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://localhost:9000", Prefix: "p/"})
	assert.NoError(t, err)
	assert.Equal(t, "p", s.prefix)
}
