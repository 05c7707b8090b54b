package service

import (
	"fmt"
	"log/slog"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/docstore"
	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/metric"
	"github.com/c360/scriptbridge/natsclient"
)

// Dependencies carries everything a ScriptService needs injected. The
// catalog surfaces are mandatory; transport, metrics, and persistence
// are optional so the service can run embedded or in tests without
// them.
type Dependencies struct {
	// Catalog is the host's node catalog
	Catalog catalog.Provider
	// Types resolves type specs and answers inheritance queries
	Types *catalog.TypeSystem
	// Filter judges context legality during scoped resolution; nil
	// falls back to the default filter over Types
	Filter catalog.ContextFilter

	// NATSClient serves the request/reply command subject when set
	NATSClient *natsclient.Client
	// MetricsRegistry records command and resolution metrics when set
	MetricsRegistry *metric.MetricsRegistry
	// Store persists documents when set; without it documents live only
	// in memory
	Store *docstore.Store
	// Logger is the structured logger; nil uses slog.Default
	Logger *slog.Logger
}

// Validate checks the mandatory dependencies are present
func (d *Dependencies) Validate() error {
	if d.Catalog == nil {
		return errors.WrapInvalid(
			fmt.Errorf("catalog provider is required"),
			"Dependencies", "Validate", "dependency validation")
	}
	if d.Types == nil {
		return errors.WrapInvalid(
			fmt.Errorf("type system is required"),
			"Dependencies", "Validate", "dependency validation")
	}
	return nil
}
