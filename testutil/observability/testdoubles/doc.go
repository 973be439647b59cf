// Package testdoubles provides spies for the observability interfaces of the circulation packages.
//
//   - MetricsCollectorSpy: captures durations, counters and values, with a fluent matcher
//   - TracingCollectorSpy: captures started and finished spans
//   - LoggerSpy: captures basic and contextual log calls per level
//
// All spies are safe for concurrent use.
package testdoubles
