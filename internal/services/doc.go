// Package services holds the error taxonomy shared by the dispatchers
// and the orchestrator, plus one sub-package per external capability
// backend client.
package services
