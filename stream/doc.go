// Package stream adapts the repair parser to incremental input: a caller
// hands it chunks of text as they arrive (over a socket, a pipe, a large
// file read in pieces) instead of one complete string.
//
// The repair grammar's back-patching needs look-behind on output and
// look-ahead on input that can, in the worst case, span an entire value —
// a string recognizer's stop-at-delimiter retry rewinds to the quote that
// opened it, and NDJSON detection needs to see past a whole trailing value
// before it knows a comma was really a separator. A Transform cannot
// repair its buffered window incrementally without breaking those
// invariants, so it takes the same approach javalyzer's Lexer takes
// internally before a parse: accumulate within a bounded window and defer
// the actual recognition to Close, failing fast with BufferExceeded if a
// caller's input would ever need more window than configured.
package stream
