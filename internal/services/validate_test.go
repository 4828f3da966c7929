package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		wantField  string
		wantPrefix string
	}{
		{
			name:       "blank message",
			input:      models.MessageRequest{Content: "   "},
			wantField:  "content",
			wantPrefix: "content cannot be blank",
		},
		{
			name:       "blank category",
			input:      func() models.RFPRequest { r := validRFPRequest(models.PublicRFP); r.Category = " \t"; return r }(),
			wantField:  "category",
			wantPrefix: "category cannot be blank",
		},
		{
			name: "inverted budget",
			input: func() models.RFPRequest {
				r := validRFPRequest(models.PublicRFP)
				r.BudgetMin, r.BudgetMax = floatPtr(500), floatPtr(100)
				return r
			}(),
			wantField:  "budgetMax",
			wantPrefix: "Maximum budget must be greater than or equal to minimum budget",
		},
		{
			name:       "short cover letter",
			input:      models.ProposalUpdate{CoverLetter: strPtr("too short")},
			wantField:  "coverLetter",
			wantPrefix: "coverLetter must be at least",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errResp := requireErrorResponse(t, checkStruct(tt.input), http.StatusBadRequest, models.ValidationError, "")
			require.Len(t, errResp.Issues, 1)
			assert.Equal(t, tt.wantField, errResp.Issues[0].Field)
			assert.True(t, strings.HasPrefix(errResp.Issues[0].Message, tt.wantPrefix), errResp.Issues[0].Message)
		})
	}
}

func TestCheckStruct_Valid(t *testing.T) {
	assert.NoError(t, checkStruct(validRFPRequest(models.PrivateRFP)))
	assert.NoError(t, checkStruct(models.MessageRequest{Content: "Hello"}))
	assert.NoError(t, checkStruct(models.ProposalUpdate{}))
}
