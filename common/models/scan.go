package models

import "github.com/google/uuid"

// ScanOutcomeKind classifies the result of one scan event. These are
// business outcomes, not errors; infrastructure faults travel separately
// as Go errors so the UI never confuses "part not found" with "database
// unreachable".
type ScanOutcomeKind string

const (
	// ScanEmpty means the input normalized to nothing; the scan is a no-op.
	ScanEmpty ScanOutcomeKind = "empty"
	// ScanNotFound means the identifier has no active catalog entry
	// (operator error or out-of-standard part).
	ScanNotFound ScanOutcomeKind = "not_found"
	// ScanAmbiguous means a lot-less scan matched the same kanban
	// identifier in more than one lot; the operator must rescan with a lot.
	ScanAmbiguous ScanOutcomeKind = "ambiguous"
	// ScanAlreadyDelivered means the card (and its whole joint group, if
	// any) was already confirmed.
	ScanAlreadyDelivered ScanOutcomeKind = "already_delivered"
	// ScanDelivered means new delivery records were written.
	ScanDelivered ScanOutcomeKind = "delivered"
)

// ScanOutcome is the tagged result of one scan confirmation.
type ScanOutcome struct {
	ScanID uuid.UUID       `json:"scan_id"`
	Kind   ScanOutcomeKind `json:"kind"`
	Model  string          `json:"model,omitempty"`
	LotNo  string          `json:"lot_no,omitempty"`
	// Count is how many cards this scan delivered: 1 for a solo card, N-M
	// for a joint group with M members already sent. Operators verify the
	// physical bundle size against it.
	Count int `json:"count,omitempty"`
	// GroupSize is the full joint-group size, 1 for solo cards. On an
	// AlreadyDelivered outcome it distinguishes a solo duplicate
	// (GroupSize == 1) from a joint group that is already complete.
	GroupSize int `json:"group_size,omitempty"`
}
