// Package seoentity extracts the visible text of a page, sends it to an
// entity-extraction service, and overlays the recognized entities back onto
// the text for SEO analysis.
//
// This package contains domain types, interfaces and the pure parts of the
// pipeline (normalization, aggregation, enrichment, highlighting), following
// Ben Johnson's Standard Package Layout. Implementations that need a
// dependency live in subdirectories named after it (e.g., goquery/, sqlite/,
// gemini/).
package seoentity
