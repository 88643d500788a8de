package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultCRMTimeout is the default HTTP timeout for CRM webhook requests
	DefaultCRMTimeout = 15 * time.Second

	// leadAddMethod is the REST method appended to the inbound webhook URL
	leadAddMethod = "crm.lead.add.json"
)

// WebhookCRMClient implements CRMClient against a Bitrix24-style inbound
// webhook (https://<portal>/rest/<user>/<token>/).
type WebhookCRMClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookCRMClient creates a CRM client for the given inbound webhook URL.
func NewWebhookCRMClient(webhookURL string, timeout time.Duration) *WebhookCRMClient {
	if timeout <= 0 {
		timeout = DefaultCRMTimeout
	}
	if !strings.HasSuffix(webhookURL, "/") {
		webhookURL += "/"
	}
	return &WebhookCRMClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateLead implements CRMClient.
func (c *WebhookCRMClient) CreateLead(ctx context.Context, lead Lead) (*LeadResult, error) {
	fields := map[string]interface{}{
		"TITLE":     lead.Title,
		"NAME":      lead.Name,
		"COMMENTS":  lead.Comment,
		"SOURCE_ID": lead.Source,
	}
	if lead.Phone != "" {
		fields["PHONE"] = []map[string]string{{"VALUE": lead.Phone, "VALUE_TYPE": "WORK"}}
	}
	if lead.Email != "" {
		fields["EMAIL"] = []map[string]string{{"VALUE": lead.Email, "VALUE_TYPE": "WORK"}}
	}
	if lead.Service != "" {
		fields["SOURCE_DESCRIPTION"] = lead.Service
	}

	payloadBytes, err := json.Marshal(map[string]interface{}{
		"fields": fields,
		"params": map[string]string{"REGISTER_SONET_EVENT": "Y"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL+leadAddMethod, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed webhookResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("CRM error (status %d): %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if parsed.Error != "" {
		return nil, fmt.Errorf("CRM error %s: %s", parsed.Error, parsed.ErrorDescription)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CRM error (status %d): %s", resp.StatusCode, string(body))
	}

	id, err := parsed.id()
	if err != nil {
		return nil, err
	}

	return &LeadResult{ID: id}, nil
}

// webhookResponse is the envelope returned by the REST webhook.
// result is the new record ID, sent as a number or a numeric string.
type webhookResponse struct {
	Result           json.RawMessage `json:"result"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func (r webhookResponse) id() (string, error) {
	raw := bytes.TrimSpace(r.Result)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return "", errors.New("CRM response has no record id")
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}

	return "", fmt.Errorf("unexpected CRM result: %s", string(raw))
}
