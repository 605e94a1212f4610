// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): source adapters, persistence, the external
// AI collaborators and caches.
package driven
