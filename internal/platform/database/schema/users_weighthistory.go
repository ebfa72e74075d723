package schema

// WeightHistoryTable represents the 'weight_history' table
type WeightHistoryTable struct {
	Table      string
	ID         string
	AccountID  string
	RecordedAt string
	Weight     string
	Goal       string
}

// WeightHistory is the schema definition for weight_history.
// Rows are append-only; ID orders them in acceptance order.
var WeightHistory = WeightHistoryTable{
	Table:      "weight_history",
	ID:         "id",
	AccountID:  "accountid",
	RecordedAt: "recordedat",
	Weight:     "weight",
	Goal:       "goal",
}
