package dto

// ReconcileRequest carries the two record sets for an on-demand
// reconciliation run.
type ReconcileRequest struct {
	Internal []RecordInput `json:"internal"`
	External []RecordInput `json:"external"`
}

// RecordInput is one raw transaction row. Date and amount are strings so
// that unparseable values can be absorbed as invalid records instead of
// failing JSON decoding.
type RecordInput struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
}
