package external

import "context"

// CRMClient defines the interface for the external CRM that receives leads.
type CRMClient interface {
	// CreateLead creates a lead record and returns its CRM identifier.
	CreateLead(ctx context.Context, lead Lead) (*LeadResult, error)
}

// Lead is the contact data collected during a chat.
type Lead struct {
	Title   string // Lead title shown in the CRM list
	Name    string // Contact name
	Phone   string // Contact phone (optional)
	Email   string // Contact email (optional)
	Comment string // Free-text request summary (optional)
	Service string // Requested service (optional)
	Source  string // Lead source tag
}

// LeadResult is the CRM's answer to a lead creation.
type LeadResult struct {
	ID string // CRM record identifier
}
