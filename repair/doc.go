// Package repair turns malformed JSON-like text into strictly valid JSON.
//
// # Overview
//
// Repair is a single-pass, recursive-descent recognizer. It reads the input
// once, left to right, and writes a JSON prefix to an output buffer as it
// goes. When a later character reveals that an earlier decision was wrong
// (a quote that wasn't really the end of a string, a comma that should not
// have been required yet) the recognizer edits the output buffer in place
// rather than re-parsing from scratch.
//
// # Architecture
//
//	┌───────────┐     ┌───────────┐     ┌────────────┐
//	│  cursor    │────▶│ recognizer│────▶│   builder   │
//	│ (read idx) │     │ (value,   │     │ (back-patch │
//	│            │◀────│  object,  │◀────│  output)    │
//	└───────────┘     │  string…) │     └────────────┘
//	                   └───────────┘
//
// The cursor exposes peek/advance/match-literal over the input's runes. The
// builder is append-only except for three back-patch primitives: strip the
// last occurrence of a character, insert text before the trailing
// whitespace run, and remove a rune at an absolute index. Every recognizer
// is built from those two collaborators plus calls into the others.
//
// # Entry point
//
//	text, err := repair.Repair(malformed)
//
// A non-nil error is always a *repair.Error carrying the byte-ish (rune)
// offset at which repair became impossible; no partial output is returned
// on error.
package repair
