package collator

// Config selects and parameterizes the collation provider.
type Config struct {
	// Name is the registered provider name.
	Name string `mapstructure:"name" default:"dialoginfo"`
	// Path is passed to the provider as "plugin-path" (e.g. a backend location).
	Path string `mapstructure:"path" default:""`
	// LogFile is passed as "log-path". Empty keeps the provider on the service logger.
	LogFile string `mapstructure:"log_file" default:""`
	// LogLevel is passed as "log-level".
	LogLevel string `mapstructure:"log_level" default:"info"`
	// ParamsFile is an optional YAML map of extra provider parameters.
	ParamsFile string `mapstructure:"params_file" default:""`
	// ForceSingleDialog is passed as "force-single-dialog".
	ForceSingleDialog bool `mapstructure:"force_single_dialog" default:"false"`
	// ForceDummyDialog is passed as "force-dummy-dialog".
	ForceDummyDialog bool `mapstructure:"force_dummy_dialog" default:"false"`
}
