package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		l, err := New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}
	dev, _ := New("development")
	assert.True(t, dev.Core().Enabled(-1), "development logs debug")
	prod, _ := New("production")
	assert.False(t, prod.Core().Enabled(-1), "production drops debug")
}
