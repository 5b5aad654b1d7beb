package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{Enabled: true, SampleRatio: 1})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{Endpoint: "http://localhost:4318", SampleRatio: 1})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no actual export happens.
	shutdown, err := Setup(context.Background(), Options{
		Endpoint:       "http://192.0.2.1:4318",
		Enabled:        true,
		ServiceName:    "sk-test",
		ServiceVersion: "v1.0.0",
		SampleRatio:    0.5,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_RejectsBadRatio(t *testing.T) {
	_, err := Setup(context.Background(), Options{Endpoint: "http://192.0.2.1:4318", Enabled: true, SampleRatio: 2})
	require.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio   float64
		want    string
		wantErr bool
	}{
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.25, want: "ParentBased{root:TraceIDRatioBased{0.25}"},
		{ratio: -0.1, wantErr: true},
	}
	for _, tt := range tests {
		s, err := samplerFor(tt.ratio)
		if tt.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Contains(t, s.Description(), tt.want)
	}
}

func TestServiceAttributes(t *testing.T) {
	assert.Equal(t, []attribute.KeyValue{semconv.ServiceName(DefaultServiceName)}, serviceAttributes(Options{}))
	assert.Equal(t,
		[]attribute.KeyValue{semconv.ServiceName("sk"), semconv.ServiceVersion("v2")},
		serviceAttributes(Options{ServiceName: "sk", ServiceVersion: "v2"}),
	)
}
