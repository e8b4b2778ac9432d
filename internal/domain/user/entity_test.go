package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		in    string
		want  Gender
		valid bool
	}{
		{"Male", GenderMale, true},
		{"FEMALE", GenderFemale, true},
		{" other ", GenderOther, true},
		{"unknown", Gender("unknown"), false},
		{"", Gender(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseGender(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestSanitized_OmitsPassword(t *testing.T) {
	birth := time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC)
	u := &User{
		ID:           1,
		FirstName:    "A",
		LastName:     "B",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret",
		Gender:       GenderFemale,
		BirthDate:    &birth,
	}

	data, err := json.Marshal(u.Sanitized())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, string(data), "$2a$10$secret")
	assert.Equal(t, "1990-03-04", body["birthDate"])
	assert.Equal(t, false, body["isVerified"])
}

func TestUser_MarshalSkipsPasswordHash(t *testing.T) {
	data, err := json.Marshal(&User{ID: 1, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"hash"`)
	assert.NotContains(t, string(data), "PasswordHash")
}

func TestProfileUpdate_Empty(t *testing.T) {
	assert.True(t, ProfileUpdate{}.Empty())
	name := "A"
	assert.False(t, ProfileUpdate{FirstName: &name}.Empty())
}
