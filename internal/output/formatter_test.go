// internal/output/formatter_test.go
package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name string
		want Formatter
	}{
		{"", NewMarkdownFormatter()},
		{"markdown", NewMarkdownFormatter()},
		{"md", NewMarkdownFormatter()},
		{"json", NewJSONFormatter()},
	}
	for _, tt := range tests {
		f, err := NewFormatter(tt.name)
		require.NoError(t, err)
		assert.IsType(t, tt.want, f, tt.name)
	}
}

func TestNewFormatterUnknown(t *testing.T) {
	_, err := NewFormatter("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
