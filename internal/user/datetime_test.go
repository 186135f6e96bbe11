package user_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

func TestDateTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"seconds", `"1990-05-17T10:15:30"`, time.Date(1990, time.May, 17, 10, 15, 30, 0, time.Local)},
		{"nanoseconds", `"1990-05-17T10:15:30.1234567"`, time.Date(1990, time.May, 17, 10, 15, 30, 123456700, time.Local)},
		{"minutes", `"1990-05-17T10:15"`, time.Date(1990, time.May, 17, 10, 15, 0, 0, time.Local)},
		{"rfc3339", `"1990-05-17T10:15:30Z"`, time.Date(1990, time.May, 17, 10, 15, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dt user.DateTime
			require.NoError(t, json.Unmarshal([]byte(tt.input), &dt))
			assert.True(t, tt.want.Equal(dt.Time), "want %s, got %s", tt.want, dt.Time)
		})
	}
}

func TestDateTime_UnmarshalJSON_Invalid(t *testing.T) {
	for _, input := range []string{`"17.05.1990"`, `"1990-05-17"`, `12345`, `"not a date"`} {
		var dt user.DateTime
		assert.Error(t, json.Unmarshal([]byte(input), &dt), input)
	}
}

func TestDateTime_MarshalJSON(t *testing.T) {
	dt := user.NewDateTime(time.Date(1990, time.May, 17, 10, 15, 30, 120000000, time.Local))

	out, err := json.Marshal(dt)
	require.NoError(t, err)
	assert.Equal(t, `"1990-05-17T10:15:30.12"`, string(out))

	whole := user.NewDateTime(time.Date(1990, time.May, 17, 10, 15, 30, 0, time.Local))
	out, err = json.Marshal(whole)
	require.NoError(t, err)
	assert.Equal(t, `"1990-05-17T10:15:30"`, string(out))
}

func TestParseDate(t *testing.T) {
	got, err := user.ParseDate("2001-09-11")
	require.NoError(t, err)
	assert.True(t, time.Date(2001, time.September, 11, 0, 0, 0, 0, time.Local).Equal(got))

	_, err = user.ParseDate("11-09-2001")
	assert.Error(t, err)
}
