package models

import "time"

// DeliveryRecord marks a kanban card as delivered. One row per card; a
// repeat scan refreshes LastScannedAt and leaves CreatedAt untouched.
// A card is "Sent" iff its record exists; there are no intermediate states.
type DeliveryRecord struct {
	KanbanID      string    `json:"kanban_id"`
	LotNo         string    `json:"lot_no"`
	Model         string    `json:"model"`
	WireNo        string    `json:"wire_no,omitempty"`
	ProcessFrom   string    `json:"process_from,omitempty"`
	ProcessTo     string    `json:"process_to,omitempty"`
	ScannedBy     string    `json:"scanned_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastScannedAt time.Time `json:"last_scanned_at"`
}

// Key returns the record's composite key.
func (d *DeliveryRecord) Key() CardKey {
	return CardKey{KanbanID: d.KanbanID, LotNo: d.LotNo}
}
