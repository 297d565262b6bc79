// Package fedcrawl discovers the peers of a federated network by walking
// each server's peer list outward from a single seed domain.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, fs/, sqlite/).
package fedcrawl
