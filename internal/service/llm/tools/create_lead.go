package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatrelay/internal/service/llm/tools/external"
)

// CreateLeadTool implements the 'create_lead' tool: it files the contact
// details the assistant collected as a lead in the CRM.
type CreateLeadTool struct {
	client external.CRMClient
	config *ToolConfig
}

// NewCreateLeadTool creates a new CreateLeadTool instance.
func NewCreateLeadTool(client external.CRMClient, config *ToolConfig) *CreateLeadTool {
	if config == nil {
		config = DefaultToolConfig()
	}
	return &CreateLeadTool{
		client: client,
		config: config,
	}
}

// Execute implements ToolExecutor interface.
// Input parameters:
//   - name (string, required): Contact name
//   - phone (string, optional)
//   - email (string, optional)
//   - comment / message (string, optional): What the contact asked for
//   - service (string, optional): Requested service
//
// Returns:
//   - {ok: true, id: "<crm id>"}
func (t *CreateLeadTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	if t.client == nil {
		return nil, errors.New("CRM is not configured")
	}

	name := t.stringArg(input, "name")
	if name == "" {
		return nil, errors.New("missing required parameter: name (string)")
	}

	phone := t.stringArg(input, "phone")
	email := t.stringArg(input, "email")
	if phone == "" && email == "" {
		return nil, errors.New("at least one of phone or email is required")
	}

	comment := t.stringArg(input, "comment")
	if comment == "" {
		comment = t.stringArg(input, "message")
	}

	lead := external.Lead{
		Title:   fmt.Sprintf("%s: %s", t.config.LeadTitlePrefix, name),
		Name:    name,
		Phone:   phone,
		Email:   email,
		Comment: comment,
		Service: t.stringArg(input, "service"),
		Source:  t.config.LeadSource,
	}

	res, err := t.client.CreateLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	return map[string]interface{}{
		"ok": true,
		"id": res.ID,
	}, nil
}

// stringArg extracts a trimmed, length-capped string argument.
// Numbers are accepted too since models sometimes emit phone numbers unquoted.
func (t *CreateLeadTool) stringArg(input map[string]interface{}, key string) string {
	var s string
	switch v := input[key].(type) {
	case string:
		s = v
	case float64:
		s = fmt.Sprintf("%.0f", v)
	default:
		return ""
	}

	s = strings.TrimSpace(s)
	if t.config.MaxFieldLength > 0 && len([]rune(s)) > t.config.MaxFieldLength {
		s = string([]rune(s)[:t.config.MaxFieldLength])
	}
	return s
}
