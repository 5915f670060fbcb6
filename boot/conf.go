package boot

// Bootstrap is the root of the boot configuration.
type Bootstrap struct {
	Keel *Keel `json:"keel"`
}

// Keel holds the registry-level boot configuration.
type Keel struct {
	// Application identifies the process for logs
	Application *Application `json:"application"`

	// Components is the ordered list of component names to install.
	// Order is preserved verbatim; it is not a dependency order.
	// When empty, components are discovered from the configuration: every
	// registered component whose config prefix has a section present is
	// installed, in registration-name order.
	Components []string `json:"components"`

	// Log configures the logging backend
	Log *Log `json:"log"`
}

// Application identity configuration.
type Application struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Log configuration.
type Log struct {
	// Level is one of debug, info, warn, error; default info
	Level string `json:"level"`
}
