package logging

// Settings defines the logging section of the tiler configuration file.
type Settings struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the TILER_LOG_LEVEL environment variable.
	Level string `yaml:"level" toml:"level" json:"level,omitempty"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	ReportCaller bool `yaml:"report_caller" toml:"report_caller" json:"report_caller,omitempty"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format" toml:"format" json:"format,omitempty" jsonschema:"enum=text,enum=json"`

	// File, if set, is a path that log lines are appended to.
	File string `yaml:"file" toml:"file" json:"file,omitempty"`

	// Stderr controls when logs are sent to stderr.
	// Can be "auto" (default), "always", or "never".
	Stderr string `yaml:"stderr" toml:"stderr" json:"stderr,omitempty" jsonschema:"enum=auto,enum=always,enum=never"`
}
