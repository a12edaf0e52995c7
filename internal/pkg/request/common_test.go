package request

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestByIDRequestBinding(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"uuid", "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a", true},
		{"empty", "", false},
		{"numeric", "42", false},
		{"truncated", "9f8e7d6c-5b4a-4392-8170", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&ByIDRequest{ID: tt.id})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestListParamsBinding(t *testing.T) {
	assert.NoError(t, binding.Validator.ValidateStruct(&ListParams{Page: 1, PageSize: 100, SortOrder: "desc"}))
	assert.Error(t, binding.Validator.ValidateStruct(&ListParams{Page: 0, PageSize: 20}))
	assert.Error(t, binding.Validator.ValidateStruct(&ListParams{Page: 1, PageSize: 101}))
	assert.Error(t, binding.Validator.ValidateStruct(&ListParams{Page: 1, PageSize: 20, SortOrder: "sideways"}))
}
