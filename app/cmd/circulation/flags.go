package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// bookCopiesFlag collects repeated -book ID:COPIES flags. COPIES defaults to 1.
type bookCopiesFlag []circulation.BookCopies

func (f *bookCopiesFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, entry := range *f {
		parts = append(parts, fmt.Sprintf("%s:%d", entry.BookID, entry.Copies))
	}

	return strings.Join(parts, ",")
}

func (f *bookCopiesFlag) Set(value string) error {
	idPart, copiesPart, hasCopies := strings.Cut(value, ":")

	bookID, err := uuid.Parse(idPart)
	if err != nil {
		return fmt.Errorf("invalid book id %q: %w", idPart, err)
	}

	copies := 1
	if hasCopies {
		if copies, err = strconv.Atoi(copiesPart); err != nil {
			return fmt.Errorf("invalid copies %q: %w", copiesPart, err)
		}
	}

	*f = append(*f, circulation.BookCopies{BookID: bookID, Copies: copies})

	return nil
}
