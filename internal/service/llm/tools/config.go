package tools

// ToolConfig centralizes configuration for all tools.
type ToolConfig struct {
	// Lead tool configuration
	LeadSource      string // CRM source tag attached to chat leads
	LeadTitlePrefix string // Prefix for the CRM lead title
	MaxFieldLength  int    // Longer string arguments are truncated
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		LeadSource:      "WEB",
		LeadTitlePrefix: "Chat lead",
		MaxFieldLength:  2000,
	}
}
