package models

// StatusRow is one (model, lot) line of the delivery status report.
// Sent is derived strictly as a subset of Total, so Remaining is never
// negative.
type StatusRow struct {
	Model     string `json:"model"`
	LotNo     string `json:"lot_no"`
	Total     int    `json:"total"`
	Sent      int    `json:"sent"`
	Remaining int    `json:"remaining"`
}

// SummaryFilter narrows the status report. Empty fields match everything.
type SummaryFilter struct {
	Model string `json:"model,omitempty"`
	LotNo string `json:"lot_no,omitempty"`
}
