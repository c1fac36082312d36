package builder

// ConfigError means the project manifest cannot drive a build at all:
// missing framework dependency or an unparseable version requirement. Raised
// before any external process runs.
type ConfigError struct {
	Message string
	Link    string
}

func (e *ConfigError) Error() string {
	if e.Link != "" {
		return e.Message + " (" + e.Link + ")"
	}
	return e.Message
}

// BuildError means the external toolchain failed or left output that does
// not match the expected layout. Fatal; no partial output is returned.
type BuildError struct {
	Message string
	Link    string
}

func (e *BuildError) Error() string {
	if e.Link != "" {
		return e.Message + " (" + e.Link + ")"
	}
	return e.Message
}
