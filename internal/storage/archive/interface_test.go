package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradercopilot/swingdash/internal/core"
)

var (
	_ Storage = (*LocalFS)(nil)
	_ Storage = (*S3Storage)(nil)
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "reports/1/a.md", want: "reports/1/a.md"},
		{in: "/reports//1/a.md/", want: "reports/1/a.md"},
		{in: "./exports/2/x.json", want: "exports/2/x.json"},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
		{in: "../etc/passwd", wantErr: true},
		{in: "reports/../../x", wantErr: true},
		{in: `reports\1\a.md`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrArchiveFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
