package handlers

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestBindNestedOrFlat(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		body        string
		expected    CloseDayRequest
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "closure",
			body:     `{"closure": {"official_content": "Texto", "pin": "1234"}}`,
			expected: CloseDayRequest{OfficialContent: "Texto", Pin: strPtr("1234")},
		},
		{
			name:     "Flat Structure",
			key:      "closure",
			body:     `{"official_content": "Texto"}`,
			expected: CloseDayRequest{OfficialContent: "Texto"},
		},
		{
			name:     "Missing Key Falls Back to Flat",
			key:      "closure",
			body:     `{"entry": "ignored", "official_content": "Plano", "pin": "9876"}`,
			expected: CloseDayRequest{OfficialContent: "Plano", Pin: strPtr("9876")},
		},
		{
			name:        "Invalid JSON",
			key:         "closure",
			body:        `{"official_content": 12}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "closure",
			body:        `{"closure": {"pin": 1234}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			key:         "closure",
			body:        `{"closure": "texto"}`,
			expectError: true,
		},
		{
			name:        "Empty Body",
			key:         "closure",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result CloseDayRequest
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestBindBodyReportsValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"content": [1]}`))

	var req CreateEntryRequest
	err := bindBody(c, "entry", &req)

	respondError(c, err)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"body"`)
}

func TestBindNestedOrFlatRejectsOversizedBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"official_content": "` + strings.Repeat("a", maxBodyBytes) + `"}`
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))

	var req CloseDayRequest
	err := BindNestedOrFlat(c, "closure", &req)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	respondError(c, bindBody(c, "closure", &req))
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "demasiado grande")
}
