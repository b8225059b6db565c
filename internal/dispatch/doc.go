// Package dispatch implements the buffered asynchronous relay behind the
// dashauth transition stream.
//
// # Components
//
//   - [Sink]: interface for event consumers.
//   - [Dispatcher]: buffered relay with drop-if-full / block-if-full semantics.
//
// # Architecture boundaries
//
// This package owns buffering and in-order delivery to a single sink. It does
// NOT decide which events to emit; the Controller does.
//
// # What this package must NOT do
//
//   - Filter or reorder events.
//   - Import dashauth or any sibling package.
package dispatch
