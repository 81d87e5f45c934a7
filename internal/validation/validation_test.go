package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCircleText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		title       string
		description string
		wantErr     bool
	}{
		{"Valid", "Systems Design", "Weekly sessions", false},
		{"Blank Title", "   ", "Weekly sessions", true},
		{"Blank Description", "Systems Design", "", true},
		{"Title Too Long", strings.Repeat("a", MaxTitleLength+1), "x", true},
		{"Title At Max", strings.Repeat("a", MaxTitleLength), "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCircleText(tt.title, tt.description)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	tags, err := NormalizeTags([]string{" go ", "Go", "", "kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "kubernetes"}, tags)

	_, err = NormalizeTags([]string{"a", "b", "c", "d", "e", "f"})
	assert.Error(t, err)

	tags, err = NormalizeTags([]string{"a", "b", "c", "d", "e", "A"})
	require.NoError(t, err, "duplicates do not count against the limit")
	assert.Len(t, tags, MaxTags)
}

func TestNormalizeIntentStatement(t *testing.T) {
	t.Parallel()

	got, err := NormalizeIntentStatement("  I want to grow  ")
	require.NoError(t, err)
	assert.Equal(t, "I want to grow", got)

	_, err = NormalizeIntentStatement(" \n ")
	assert.Error(t, err)
}

func TestValidatePositive(t *testing.T) {
	t.Parallel()
	zero, five, limit, over := 0, 5, MaxCircleLimit, MaxCircleLimit+1

	assert.NoError(t, ValidatePositive("capacity", nil))
	assert.NoError(t, ValidatePositive("capacity", &five))
	assert.NoError(t, ValidatePositive("capacity", &limit))
	assert.EqualError(t, ValidatePositive("capacity", &zero), "capacity must be a positive number")
	assert.EqualError(t, ValidatePositive("duration", &over), "duration must be at most 2147483647")
}

func TestValidateLink(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateLink("https://go.dev/doc"))
	assert.Error(t, ValidateLink("go.dev/doc"))
	assert.Error(t, ValidateLink("javascript:alert(1)"))
}

func TestStruct(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title    string `validate:"notblank"`
		Capacity int    `validate:"gt=0"`
		Decision string `validate:"oneof=ACCEPT REJECT"`
	}

	assert.NoError(t, Struct(payload{Title: "x", Capacity: 1, Decision: "ACCEPT"}))
	assert.EqualError(t, Struct(payload{Title: " ", Capacity: 1, Decision: "ACCEPT"}), "title is required")
	assert.EqualError(t, Struct(payload{Title: "x", Capacity: 0, Decision: "ACCEPT"}), "capacity must be greater than 0")
	assert.EqualError(t, Struct(payload{Title: "x", Capacity: 1, Decision: "MAYBE"}), "decision must be one of: ACCEPT REJECT")
}
