package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Address string  `json:"address"`
	Rent    float64 `json:"rent"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "Nested structure",
			key:      "lease",
			body:     `{"lease": {"address": "Via Roma 1", "rent": 1200}}`,
			expected: bindTarget{Address: "Via Roma 1", Rent: 1200},
		},
		{
			name:     "Flat structure",
			key:      "lease",
			body:     `{"address": "Via Milano 2", "rent": 950}`,
			expected: bindTarget{Address: "Via Milano 2", Rent: 950},
		},
		{
			name:     "Missing key falls back to flat",
			key:      "lease",
			body:     `{"other": "x", "address": "Via Napoli 3", "rent": 800}`,
			expected: bindTarget{Address: "Via Napoli 3", Rent: 800},
		},
		{
			name:        "Nested but invalid content",
			key:         "lease",
			body:        `{"lease": {"address": "Via Roma 1", "rent": "invalid"}}`,
			expectError: true,
		},
		{
			name:        "Nested key present but wrong type",
			key:         "lease",
			body:        `{"lease": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
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
