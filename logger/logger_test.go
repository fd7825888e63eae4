package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "doc_id", "abc", "dangling"})
	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "doc_id", "abc", "dangling"}, out)
}

func TestSanitizeKVs_NonStringKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{42, "value"})
	assert.Equal(t, []interface{}{42, "value"}, out)
}

func TestNew(t *testing.T) {
	l, err := New("dev")
	assert.NoError(t, err)
	assert.NotNil(t, l.With("component", "test"))
}
