package removelibrarian

import (
	"github.com/google/uuid"
)

const (
	commandType = "RemoveLibrarian"
)

// Command represents the intent to remove a librarian.
type Command struct {
	LibrarianID uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided librarian ID.
func BuildCommand(librarianID uuid.UUID) Command {
	return Command{
		LibrarianID: librarianID,
	}
}
