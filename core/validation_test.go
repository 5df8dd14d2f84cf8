package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *AcceleratorInput {
	return &AcceleratorInput{
		Tenant:      "acme",
		Content:     "Widget A | A fine widget",
		ContentType: ContentTypeText,
		FileName:    "catalog.txt",
	}
}

func TestValidateInput_Valid(t *testing.T) {
	require.NoError(t, ValidateInput(validInput()))
}

func TestValidateInput_Nil(t *testing.T) {
	err := ValidateInput(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateInput_EmptyTenant(t *testing.T) {
	input := validInput()
	input.Tenant = "   "
	err := ValidateInput(input)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrEmptyTenant)
}

func TestValidateInput_EmptyContent(t *testing.T) {
	input := validInput()
	input.Content = "\n\t "
	err := ValidateInput(input)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestValidateInput_UnrecognizedContentType(t *testing.T) {
	input := validInput()
	input.ContentType = ContentType("docx")
	err := ValidateInput(input)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name    string
		ct      ContentType
		wantErr bool
	}{
		{"pdf", ContentTypePDF, false},
		{"excel", ContentTypeExcel, false},
		{"text", ContentTypeText, false},
		{"empty", ContentType(""), true},
		{"unknown", ContentType("csv"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentType(tt.ct)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidContentType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	item := &NormalizedItem{Name: "Widget A", Type: ItemTypeProduct, Confidence: 0.9}
	require.NoError(t, ValidateItem(item))

	item.Name = ""
	assert.ErrorIs(t, ValidateItem(item), ErrEmptyItemName)

	item.Name = "Widget A"
	item.Type = ItemType(9)
	assert.ErrorIs(t, ValidateItem(item), ErrInvalidItemType)

	item.Type = ItemTypeService
	item.Confidence = 1.2
	assert.ErrorIs(t, ValidateItem(item), ErrInvalidConfidence)
}
