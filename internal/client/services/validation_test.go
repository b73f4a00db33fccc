package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pw   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"password", 1},
		{"Password", 2},
		{"Password1", 3},
		{"Password1!", 4},
		{"correct horse battery", 3},
		{"Correct-Horse-Battery-9", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PasswordStrength(tt.pw), tt.pw)
	}
	assert.Equal(t, "fair", StrengthLabel(MinPasswordStrength))
}

func TestValidate_CredentialsOK(t *testing.T) {
	assert.Nil(t, Validate(Credentials{Identifier: "a", Password: "b"}))
}

func TestValidate_RegistrationOK(t *testing.T) {
	reg := validRegistration()
	reg.Phone = "+15551234567"
	assert.Nil(t, Validate(reg))
}

func TestCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	c := NewCooldown(func() time.Time { return now })

	assert.False(t, c.Observe(Result{Code: CodeNetworkError}))
	assert.False(t, c.Active())

	assert.True(t, c.Observe(Result{Code: CodeRateLimited, RetryAfter: 1500 * time.Millisecond}))
	assert.True(t, c.Active())
	assert.Equal(t, 2*time.Second, c.Remaining())

	now = now.Add(1600 * time.Millisecond)
	assert.False(t, c.Active())

	c.Observe(Result{Code: CodeRateLimited})
	assert.Equal(t, DefaultRetryAfter, c.Remaining())
	c.Reset()
	assert.Zero(t, c.Remaining())
}
