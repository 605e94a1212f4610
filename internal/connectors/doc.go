// Package connectors provides the source adapter implementations for the
// supported providers, plus the shared rate limiting, credential and
// error-classification plumbing they build on.
//
// Adapters are created through the Factory, which dispatches on the
// source's provider type.
package connectors
