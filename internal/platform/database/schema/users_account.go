package schema

// AccountTable represents the 'account' table
type AccountTable struct {
	Table         string
	ID            string
	Username      string
	Password      string
	CurrentWeight string
	Height        string
	TargetWeight  string
	Goal          string
	CreatedAt     string
	UpdatedAt     string
}

// Account is the schema definition for account
var Account = AccountTable{
	Table:         "account",
	ID:            "id",
	Username:      "username",
	Password:      "passwordhash",
	CurrentWeight: "currentweight",
	Height:        "height",
	TargetWeight:  "targetweight",
	Goal:          "goal",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}
