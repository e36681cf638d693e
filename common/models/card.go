package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardKey identifies a kanban card. Identifiers are not unique across lots
// in practice, so the composite (kanban, lot) is the key everywhere.
type CardKey struct {
	KanbanID string `json:"kanban_id"`
	LotNo    string `json:"lot_no"`
}

// KanbanCard is a master catalog entry. Rows are bulk-loaded and treated as
// immutable between uploads; the scan path never mutates them.
type KanbanCard struct {
	KanbanID      string          `json:"kanban_id"`
	LotNo         string          `json:"lot_no"`
	Model         string          `json:"model"`
	WireNo        string          `json:"wire_no,omitempty"`
	HarnessPartNo string          `json:"harness_part_no,omitempty"`
	HarnessCode   string          `json:"harness_code,omitempty"`
	CableName     string          `json:"cable_name,omitempty"`
	LengthMM      decimal.Decimal `json:"length_mm"`
	JointA        string          `json:"joint_a,omitempty"`
	JointB        string          `json:"joint_b,omitempty"`
	ProcessFrom   string          `json:"process_from,omitempty"`
	ProcessTo     string          `json:"process_to,omitempty"`
	Active        bool            `json:"active"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Key returns the card's composite key.
func (c *KanbanCard) Key() CardKey {
	return CardKey{KanbanID: c.KanbanID, LotNo: c.LotNo}
}

// HasJointField reports whether the card carries explicit joint linkage.
// Empty-after-normalization keys do not count.
func (c *KanbanCard) HasJointField() bool {
	return c.JointA != "" || c.JointB != ""
}
