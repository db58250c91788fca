package models

type AlertType string

const (
	AlertLate        AlertType = "Late"
	AlertCompliance  AlertType = "Compliance"
	AlertMaintenance AlertType = "Maintenance"
	AlertBilling     AlertType = "Billing"
)

// Alert is a dismissible dashboard notice
type Alert struct {
	ID        string    `json:"id" yaml:"id"`
	Type      AlertType `json:"type" yaml:"type"`
	Message   string    `json:"message" yaml:"message"`
	Priority  string    `json:"priority" yaml:"priority"` // "High", "Medium" or "Low"
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
}

// Task is a dispatcher to-do item
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	DueDate   string `json:"due_date,omitempty" yaml:"due_date"`
}

// DashboardStats summarizes the board for the dashboard header
type DashboardStats struct {
	TotalRevenue     float64 `json:"total_revenue"`
	ActiveLoads      int     `json:"active_loads"`
	PendingLoads     int     `json:"pending_loads"`
	AvailableDrivers int     `json:"available_drivers"`
	PendingLogEdits  int     `json:"pending_log_edits"`

	OutstandingReceivables float64 `json:"outstanding_receivables"`
	OverdueInvoices        int     `json:"overdue_invoices"`
	UnassignedPending      int     `json:"unassigned_pending"`
}
