// Package extractor turns a structured hospital knowledge base into chunks.
//
// The input is a JSON or YAML mapping whose top-level keys are sections.
// Each section becomes either one chunk (facility info, hours, policies) or
// one chunk per list element (departments, staff). Section order in the
// source determines chunk order, so extraction is fully deterministic.
//
// Malformed input fails with *domain.SchemaError naming the section; the
// extractor never returns a partial result.
package extractor
