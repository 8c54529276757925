package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawRequest struct {
	Username *string `json:"username"`
	Note     *string `json:"note"`
	Age      *int    `json:"age"`
}

type validRequest struct {
	Username string  `json:"username"`
	Note     *string `json:"note"`
	Age      int     `json:"age"`
}

func ptr[T any](v T) *T { return &v }

func TestRequired_AllPresent(t *testing.T) {
	in := rawRequest{Username: ptr("alice"), Age: ptr(30)}

	got, err := Required[validRequest](in, "username", "age")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 30, got.Age)
	assert.Nil(t, got.Note)
}

func TestRequired_PassesThroughOptional(t *testing.T) {
	in := rawRequest{Username: ptr("alice"), Note: ptr("hi"), Age: ptr(1)}

	got, err := Required[validRequest](in, "username")
	require.NoError(t, err)
	require.NotNil(t, got.Note)
	assert.Equal(t, "hi", *got.Note)
}

func TestRequired_Missing(t *testing.T) {
	tests := []struct {
		name  string
		in    rawRequest
		field string
	}{
		{"nil", rawRequest{Age: ptr(1)}, "username"},
		{"empty", rawRequest{Username: ptr(""), Age: ptr(1)}, "username"},
		{"whitespace", rawRequest{Username: ptr("  \t"), Age: ptr(1)}, "username"},
		{"zero number", rawRequest{Username: ptr("bob"), Age: ptr(0)}, "age"},
		{"first wins", rawRequest{}, "username"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Required[validRequest](tc.in, "username", "age")
			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf), "got %v", err)
			assert.Equal(t, tc.field, mf.Field)
		})
	}
}

func TestRequired_UnknownFieldIsMissing(t *testing.T) {
	_, err := Required[validRequest](rawRequest{Username: ptr("x")}, "nope")
	var mf *MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "nope", mf.Field)
}

func TestRequired_WorksOnMaps(t *testing.T) {
	in := map[string]any{"username": "carol", "age": 7}
	got, err := Required[validRequest](in, "username", "age")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.Username)
}

func TestValidFone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1234567890", true},
		{"123456789", false},
		{"+1 (555) 123-4567", true},
		{"abc", false},
		{"", false},
		{"123456789012345", true},
		{"1234567890123456", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ValidFone(tc.in), "fone %q", tc.in)
	}
}

func TestFoneDigits(t *testing.T) {
	assert.Equal(t, "15551234567", FoneDigits("+1 (555) 123-4567"))
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"user@", false},
		{"user@localhost", false},
		{"Alice <alice@example.com>", false},
		{" a@b.com", false},
		{"a@b..com", false},
		{"a@-b.com", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ValidEmail(tc.in), "email %q", tc.in)
	}
}
