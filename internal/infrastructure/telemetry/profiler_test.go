package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false, ApplicationName: "manufacturing"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "manufacturing"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "manufacturing",
				ProfileTypes:    []string{"cpu", "heapdump"},
			},
			wantErr: `unknown profile type "heapdump"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileInuseSpace}, types)

	types, err = parseProfileTypes([]string{" CPU ", "mutex_count"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}, types)
}

func TestWithProfilingLabels(t *testing.T) {
	labels := OperationLabels("cost_plan", "create_process", map[string]string{
		ProfilingLabelTenantID: "t-1",
		"plan_id":              "p-1",
		"":                     "ignored",
	})

	var got map[string]string
	WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		got = map[string]string{}
		pprof.ForLabels(ctx, func(key, value string) bool {
			got[key] = value
			return true
		})
	})

	assert.Equal(t, map[string]string{
		"operation": "create_process",
		"service":   "cost_plan",
		"tenant_id": "t-1",
	}, got)
}

func TestWithProfilingLabels_EmptyRunsDirectly(t *testing.T) {
	ctx := context.Background()
	called := false
	WithProfilingLabels(ctx, nil, func(c context.Context) {
		called = true
		assert.Equal(t, ctx, c)
	})
	assert.True(t, called)
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Cost-Plan Service": "x",
		"long":              strings.Repeat("a", MaxLabelValueLength+10),
		"request_id":        "r-1",
		"empty":             "",
	})

	require.Len(t, pairs, 4)
	assert.Equal(t, "cost_plan_service", pairs[0])
	assert.Equal(t, "long", pairs[2])
	assert.Len(t, pairs[3], MaxLabelValueLength)
}
