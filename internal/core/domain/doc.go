// Package domain contains the core business entities for triago.
// These types have no dependencies on infrastructure or external services.
package domain
