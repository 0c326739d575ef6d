package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reviewforge/reviewforge/pkg/pipeline"
)

func TestConfigurationOptionType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", pipeline.BoolConfigurationOption.String())
	assert.Equal(t, "int", pipeline.IntConfigurationOption.String())
	assert.Equal(t, "string", pipeline.StringConfigurationOption.String())
	assert.Equal(t, "duration", pipeline.DurationConfigurationOption.String())
	assert.Equal(t, "string", pipeline.StringsConfigurationOption.String())
	assert.Equal(t, "path", pipeline.PathConfigurationOption.String())
}

func TestConfigurationOption_FormatDefault(t *testing.T) {
	t.Parallel()

	t.Run("string is quoted", func(t *testing.T) {
		t.Parallel()

		opt := pipeline.ConfigurationOption{Type: pipeline.StringConfigurationOption, Default: "60s"}
		assert.Equal(t, `"60s"`, opt.FormatDefault())
	})

	t.Run("int is unquoted", func(t *testing.T) {
		t.Parallel()

		opt := pipeline.ConfigurationOption{Type: pipeline.IntConfigurationOption, Default: 3}
		assert.Equal(t, "3", opt.FormatDefault())
	})

	t.Run("strings slice is quoted and comma-joined", func(t *testing.T) {
		t.Parallel()

		opt := pipeline.ConfigurationOption{
			Type:    pipeline.StringsConfigurationOption,
			Default: []string{"security", "performance", "quality"},
		}
		assert.Equal(t, `"security,performance,quality"`, opt.FormatDefault())
	})
}

func TestAnalysisOptions_CoversDispatchPolicyKnobs(t *testing.T) {
	t.Parallel()

	opts := pipeline.AnalysisOptions()

	names := make(map[string]pipeline.ConfigurationOption, len(opts))
	for _, opt := range opts {
		names[opt.Name] = opt
	}

	for _, want := range []string{"concurrency", "batch-size", "driver-timeout", "cancel-grace", "categories", "descriptor-dir"} {
		opt, ok := names[want]
		assert.True(t, ok, "missing analysis option %q", want)
		assert.Equal(t, want, opt.Flag, "flag should match name for %q", want)
		assert.NotEmpty(t, opt.Description)
	}
}
