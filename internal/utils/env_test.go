package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected string
	}{
		{name: "env var exists", envValue: "from_env", expected: "from_env"},
		{name: "env var is empty", envValue: "", expected: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_STRING", tt.envValue)
			assert.Equal(t, tt.expected, GetEnvString("TEST_STRING", "default"))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{name: "valid integer", envValue: "42", expected: 42},
		{name: "negative integer", envValue: "-7", expected: -7},
		{name: "invalid integer", envValue: "abc", expected: 10},
		{name: "unset", envValue: "", expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)
			assert.Equal(t, tt.expected, GetEnvInt("TEST_INT", 10))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{name: "true", envValue: "true", expected: true},
		{name: "one", envValue: "1", expected: true},
		{name: "false", envValue: "false", expected: false},
		{name: "invalid keeps default", envValue: "maybe", expected: true},
		{name: "unset keeps default", envValue: "", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, GetEnvBool("TEST_BOOL", true))
		})
	}
}

func TestGetEnvFloat64(t *testing.T) {
	t.Setenv("TEST_FLOAT", "1.5")
	assert.Equal(t, 1.5, GetEnvFloat64("TEST_FLOAT", 2))

	t.Setenv("TEST_FLOAT", "nope")
	assert.Equal(t, 2.0, GetEnvFloat64("TEST_FLOAT", 2))
}

func TestGetEnvDurations(t *testing.T) {
	t.Setenv("TEST_SECONDS", "30")
	assert.Equal(t, 30*time.Second, GetEnvDuration("TEST_SECONDS", time.Second))

	t.Setenv("TEST_SECONDS", "0")
	assert.Equal(t, time.Second, GetEnvDuration("TEST_SECONDS", time.Second))

	t.Setenv("TEST_MILLIS", "250")
	assert.Equal(t, 250*time.Millisecond, GetEnvMillis("TEST_MILLIS", time.Second))

	t.Setenv("TEST_MILLIS", "0")
	assert.Equal(t, time.Duration(0), GetEnvMillis("TEST_MILLIS", time.Second))

	t.Setenv("TEST_MILLIS", "-1")
	assert.Equal(t, time.Second, GetEnvMillis("TEST_MILLIS", time.Second))
}

func TestIsProduction(t *testing.T) {
	for _, env := range []string{"production", "prod", "PRODUCTION"} {
		t.Setenv("ENVIRONMENT", env)
		assert.True(t, IsProduction(), env)
		assert.False(t, IsDevelopment(), env)
	}

	t.Setenv("ENVIRONMENT", "staging")
	assert.False(t, IsProduction())

	t.Setenv("ENVIRONMENT", "")
	assert.True(t, IsDevelopment())
}
