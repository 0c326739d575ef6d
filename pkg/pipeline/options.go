// Package pipeline describes the configuration knobs of the analysis run
// itself (concurrency, batching, timeouts, driver overrides) in a form the
// CLI can turn into flags and the help text can render uniformly, independent
// of which of these knobs end up set by flag, config file, or default.
package pipeline

import (
	"fmt"
	"log"
	"strings"
)

// ConfigurationOptionType represents the possible types of a ConfigurationOption's value.
type ConfigurationOptionType int

const (
	// BoolConfigurationOption reflects the boolean value type.
	BoolConfigurationOption ConfigurationOptionType = iota
	// IntConfigurationOption reflects the integer value type.
	IntConfigurationOption
	// StringConfigurationOption reflects the string value type.
	StringConfigurationOption
	// DurationConfigurationOption reflects a time.Duration value type.
	DurationConfigurationOption
	// StringsConfigurationOption reflects the array of strings value type.
	StringsConfigurationOption
	// PathConfigurationOption reflects the file system path value type.
	PathConfigurationOption
)

// String returns an empty string for the boolean type, "int" for integers and "string" for
// strings. It is used in the command line interface to show the argument's type.
func (opt ConfigurationOptionType) String() string {
	switch opt {
	case BoolConfigurationOption:
		return ""
	case IntConfigurationOption:
		return "int"
	case StringConfigurationOption:
		return "string"
	case DurationConfigurationOption:
		return "duration"
	case StringsConfigurationOption:
		return "string"
	case PathConfigurationOption:
		return "path"
	}

	log.Panicf("Invalid ConfigurationOptionType value %d", opt)

	return ""
}

// ConfigurationOption is one flag-able analysis knob, shared between the
// review core's config defaults and the CLI's flag registration so the two
// never drift.
type ConfigurationOption struct {
	// Default is the initial value of the configuration option.
	Default any
	// Name identifies the configuration option in facts.
	Name string
	// Description represents the help text about the configuration option.
	Description string
	// Flag corresponds to the CLI token with "--" prepended.
	Flag string
	// Type specifies the kind of the configuration option's value.
	Type ConfigurationOptionType
}

// FormatDefault converts the default value of ConfigurationOption to string.
// Used in the command line interface to show the argument's default value.
func (opt ConfigurationOption) FormatDefault() string {
	if opt.Type == StringsConfigurationOption {
		strSlice, ok := opt.Default.([]string)
		if !ok {
			return fmt.Sprint(opt.Default)
		}

		return fmt.Sprintf("%q", strings.Join(strSlice, ","))
	}

	if opt.Type != StringConfigurationOption && opt.Type != PathConfigurationOption {
		return fmt.Sprint(opt.Default)
	}

	return fmt.Sprintf("%q", opt.Default)
}

// AnalysisOptions returns the flag-able knobs of the executor's dispatch
// policy (§4.4, §5), in registration order, for the CLI to turn into
// local flags on the run and create commands.
func AnalysisOptions() []ConfigurationOption {
	return []ConfigurationOption{
		{
			Name:        "concurrency",
			Flag:        "concurrency",
			Description: "maximum number of analyzer subprocesses running at once",
			Default:     3,
			Type:        IntConfigurationOption,
		},
		{
			Name:        "batch-size",
			Flag:        "batch-size",
			Description: "maximum files handed to one driver invocation (0 derives from NumCPU)",
			Default:     0,
			Type:        IntConfigurationOption,
		},
		{
			Name:        "driver-timeout",
			Flag:        "driver-timeout",
			Description: "per-batch subprocess deadline",
			Default:     "60s",
			Type:        DurationConfigurationOption,
		},
		{
			Name:        "cancel-grace",
			Flag:        "cancel-grace",
			Description: "SIGTERM-to-SIGKILL escalation window on cancel",
			Default:     "5s",
			Type:        DurationConfigurationOption,
		},
		{
			Name:        "categories",
			Flag:        "categories",
			Description: "issue categories to keep",
			Default:     []string{"security", "performance", "quality"},
			Type:        StringsConfigurationOption,
		},
		{
			Name:        "descriptor-dir",
			Flag:        "descriptor-dir",
			Description: "directory of descriptor-pack YAML files for pluggable drivers",
			Default:     "",
			Type:        PathConfigurationOption,
		},
	}
}
