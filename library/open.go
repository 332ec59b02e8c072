package library

import (
	"context"
	"fmt"
)

// Backend identifies a concrete gateway implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"   // local file (default)
	BackendPostgres Backend = "postgres" // shared database
	BackendS3       Backend = "s3"       // S3 / MinIO compatible
	BackendMemory   Backend = "memory"   // in-memory (tests, demos)
)

// GatewayConfig selects and configures a gateway backend.
type GatewayConfig struct {
	Backend     Backend
	SQLitePath  string
	PostgresDSN string
	S3          S3Config
}

// OpenGateway constructs the gateway named by cfg.Backend.
func OpenGateway(ctx context.Context, cfg GatewayConfig) (Gateway, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		path := cfg.SQLitePath
		if path == "" {
			path = "library.db"
		}
		return NewDatabase(path)
	case BackendPostgres:
		return NewPostgresGateway(ctx, cfg.PostgresDSN)
	case BackendS3:
		return NewS3Gateway(ctx, cfg.S3)
	case BackendMemory:
		return NewMemoryGateway(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
