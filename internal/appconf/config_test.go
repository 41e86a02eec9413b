package appconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		envFlag  string
		expected Environment
	}{
		{"development", "development", Development},
		{"test", "test", Test},
		{"production", "production", Production},
		{"unknown falls back to development", "staging", Development},
		{"empty falls back to development", "", Development},
		{"flags are case sensitive", "PRODUCTION", Development},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvFlagToEnvironment(tt.envFlag))
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	for _, env := range []Environment{Development, Test, Production} {
		assert.Equal(t, env, EnvFlagToEnvironment(env.String()))
	}
	assert.Equal(t, Environment(0), Development)
	assert.Equal(t, Environment(2), Production)
}
