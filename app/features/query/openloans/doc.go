// Package openloans provides the loans a loaner currently holds, with the book title,
// the due date and whether each loan is overdue.
package openloans
