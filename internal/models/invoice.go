package models

type InvoiceStatus string

const (
	InvoiceDraft              InvoiceStatus = "Draft"
	InvoiceSent               InvoiceStatus = "Sent"
	InvoicePaid               InvoiceStatus = "Paid"
	InvoiceOverdue            InvoiceStatus = "Overdue"
	InvoiceFactoringSubmitted InvoiceStatus = "Factoring Submitted"
	InvoiceFactoringFunded    InvoiceStatus = "Factoring Funded"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceFactoringSubmitted, InvoiceFactoringFunded:
		return true
	}
	return false
}

// Outstanding reports whether the invoice still counts as receivable
func (s InvoiceStatus) Outstanding() bool {
	return s != InvoicePaid && s != InvoiceDraft
}

// Invoice bills a customer for a delivered load
type Invoice struct {
	ID        string        `json:"id" yaml:"id"`
	LoadID    string        `json:"load_id" yaml:"load_id"`
	Customer  string        `json:"customer" yaml:"customer"`
	Amount    float64       `json:"amount" yaml:"amount"`
	Status    InvoiceStatus `json:"status" yaml:"status"`
	IssueDate string        `json:"issue_date" yaml:"issue_date"`
	DueDate   string        `json:"due_date" yaml:"due_date"`
	AgingDays int           `json:"aging_days" yaml:"aging_days"`
}
