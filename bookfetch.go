// Package bookfetch provides a resilient, resumable chapter-fetch engine.
// It retrieves an ordered collection of remote chapters for a book from one
// of several interchangeable upstream sources (a rate-limited primary source
// or a pool of redundant mirrors), persists results incrementally so that
// interrupted runs can resume, and reports fine-grained progress to arbitrary
// consumers without coupling to any of them.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., fetch/, fs/, http/,
// sqlite/).
package bookfetch
