package removeloaner

import (
	"github.com/google/uuid"
)

const (
	commandType = "RemoveLoaner"
)

// Command represents the intent to remove a loaner.
type Command struct {
	LoanerID uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided loaner ID.
func BuildCommand(loanerID uuid.UUID) Command {
	return Command{
		LoanerID: loanerID,
	}
}
