package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Client is the transport seam between generated statements and a graph
// server. Statements are opaque text in the server's own dialect.
type Client interface {
	ExecuteWrite(ctx context.Context, statement string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, statement string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Columns []string
	Records []Record
}

// Record maps column names to values.
type Record map[string]any

// Supported drivers.
const (
	DriverNebula = "nebula"
	DriverNeo4j  = "neo4j"
	DriverMemory = "memory"
)

// Options configures a graph client implementation.
type Options struct {
	Driver string
	// Hosts lists host:port pairs for nebula. For neo4j the first entry is the
	// bolt URI.
	Hosts []string
	// Space is the nebula graph space or the neo4j database.
	Space          string
	Username       string
	Password       string
	MinConnections int
	MaxConnections int
	IdleTime       time.Duration
	Timeout        time.Duration
}

var (
	// ErrMissingHosts indicates no graph address is configured.
	ErrMissingHosts = errors.New("graph hosts are required")
	// ErrMissingSpace indicates the nebula graph space is not configured.
	ErrMissingSpace = errors.New("graph space is required")
	// ErrUnknownDriver indicates an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown graph driver")
)

// ExecutionError is returned when the server rejects a statement.
type ExecutionError struct {
	Statement string
	Code      int
	Message   string
}

func (e *ExecutionError) Error() string {
	stmt := e.Statement
	if utf8.RuneCountInString(stmt) > 120 {
		stmt = string([]rune(stmt)[:117]) + "..."
	}
	return fmt.Sprintf("graph: statement failed (code %d): %s: %s", e.Code, e.Message, stmt)
}

// New opens a client for opts.Driver.
func New(ctx context.Context, opts Options, logger *slog.Logger) (Client, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverNebula, "":
		return NewNebulaClient(ctx, opts, logger)
	case DriverNeo4j:
		return NewNeo4jClient(ctx, opts)
	case DriverMemory:
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
