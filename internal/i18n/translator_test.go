// internal/i18n/translator_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		params   map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			msg:      "Hello {{name}}",
			params:   map[string]string{"name": "jdoe"},
			expected: "Hello jdoe",
		},
		{
			name: "multiple placeholders",
			msg:  "The record '{{record_title}}' was submitted to '{{community_title}}'",
			params: map[string]string{
				"record_title":    "Dataset X",
				"community_title": "Open Science",
			},
			expected: "The record 'Dataset X' was submitted to 'Open Science'",
		},
		{
			name:     "repeated placeholder",
			msg:      "{{x}} and {{x}}",
			params:   map[string]string{"x": "a"},
			expected: "a and a",
		},
		{
			name:     "missing parameter removed",
			msg:      "by @'{{creator_name}}'",
			params:   nil,
			expected: "by @''",
		},
		{
			name:     "no placeholders",
			msg:      "Review the submission request",
			params:   map[string]string{"unused": "x"},
			expected: "Review the submission request",
		},
		{
			name:     "empty value",
			msg:      "by {{creator_name}}",
			params:   map[string]string{"creator_name": ""},
			expected: "by ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Substitute(tt.msg, tt.params))
		})
	}
}

func TestPassthrough_Translate(t *testing.T) {
	tr := Passthrough()
	got := tr.Translate("Hello {{name}}", map[string]string{"name": "jdoe"})
	assert.Equal(t, "Hello jdoe", got)
}

func TestCatalog_Translate(t *testing.T) {
	cat := NewCatalog(map[string]string{
		"Review the submission request": "Revisar la solicitud de envío",
		"Hello {{name}}":                "Hola {{name}}",
	})

	t.Run("translated phrase", func(t *testing.T) {
		got := cat.Translate("Review the submission request", nil)
		assert.Equal(t, "Revisar la solicitud de envío", got)
	})

	t.Run("placeholders substituted after lookup", func(t *testing.T) {
		got := cat.Translate("Hello {{name}}", map[string]string{"name": "jdoe"})
		assert.Equal(t, "Hola jdoe", got)
	})

	t.Run("fallback to english", func(t *testing.T) {
		got := cat.Translate("Unknown phrase", nil)
		assert.Equal(t, "Unknown phrase", got)
	})
}
