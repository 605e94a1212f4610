// Package services implements the core use cases: change detection,
// content hashing, diff summarisation, enrichment, PII redaction and
// confidence scoring. Services are constructed explicitly with their
// dependencies; there are no package-level singletons.
package services
