package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("incidenthub")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.NotNil(t, provider.MeterProvider())

	output := scrape(t, provider)
	assert.Contains(t, output, "go_goroutines")
}

func TestNewProvider_Independent(t *testing.T) {
	first, err := NewProvider("incidenthub")
	require.NoError(t, err)
	second, err := NewProvider("incidenthub")
	require.NoError(t, err)

	assert.NotSame(t, first.registry, second.registry)
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("incidenthub")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	empty := &Provider{}
	assert.NoError(t, empty.Shutdown(context.Background()))
}
