// Package prompts contains MCP prompt implementations for apiscout.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	EndpointsFile string
	SampleSize    int
	StrictTypes   bool
	// Endpoints returns the configured endpoint keys at prompt time, so
	// reloads of the endpoints file are reflected.
	Endpoints func() []string
}

func (c *Config) endpointKeys() []string {
	if c == nil || c.Endpoints == nil {
		return nil
	}
	return c.Endpoints()
}
