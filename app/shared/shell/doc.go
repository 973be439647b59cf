// Package shell holds what every feature slice of the circulation application shares:
// the command and query contracts, retry with exponential backoff for concurrency conflicts,
// the HandlerResult returned by command handlers, and the observability helpers used by the
// observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
