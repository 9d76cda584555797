package graph

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// MemoryClient records submitted statements instead of sending them. It backs
// the tests and the "memory" driver for dry runs.
type MemoryClient struct {
	mu           sync.Mutex
	executed     []ExecutedStatement
	results      []Result
	failures     map[string]error
	err          error
	connectivity error
	closed       bool
}

// ExecutedStatement captures one submitted statement.
type ExecutedStatement struct {
	Statement string
	Params    map[string]any
	Write     bool
}

// NewMemoryClient returns an empty client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{failures: make(map[string]error)}
}

// WithError makes every subsequent call fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// FailOn makes statements containing substr fail with err.
func (m *MemoryClient) FailOn(substr string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[substr] = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushResult queues a result for the next successful call.
func (m *MemoryClient) PushResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
}

func (m *MemoryClient) ExecuteWrite(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return m.execute(ctx, statement, params, true)
}

func (m *MemoryClient) ExecuteRead(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return m.execute(ctx, statement, params, false)
}

func (m *MemoryClient) execute(ctx context.Context, statement string, params map[string]any, write bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	for substr, err := range m.failures {
		if strings.Contains(statement, substr) {
			return Result{}, err
		}
	}

	m.executed = append(m.executed, ExecutedStatement{
		Statement: statement,
		Params:    maps.Clone(params),
		Write:     write,
	})

	if len(m.results) == 0 {
		return Result{}, nil
	}
	res := m.results[0]
	m.results = m.results[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Executed returns a snapshot of submitted statements in submission order.
func (m *MemoryClient) Executed() []ExecutedStatement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedStatement(nil), m.executed...)
}

// Statements returns the text of every submitted statement.
func (m *MemoryClient) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.executed))
	for i, e := range m.executed {
		out[i] = e.Statement
	}
	return out
}
