// Package overdueloans lists every loan whose due date lies before a given day, across all loaners.
// It is a reporting query and reads with eventual consistency.
package overdueloans
