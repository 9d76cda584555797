package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NewNeo4jClient opens a Bolt driver for the openCypher dialect. The first
// host is the bolt URI and Space, when set, selects the database.
func NewNeo4jClient(ctx context.Context, opts Options) (Client, error) {
	if len(opts.Hosts) == 0 || opts.Hosts[0] == "" {
		return nil, ErrMissingHosts
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.Hosts[0], auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
		if opts.Timeout > 0 {
			c.SocketConnectTimeout = opts.Timeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &neo4jClient{driver: driver, database: opts.Space}, nil
}

type neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
}

func (c *neo4jClient) ExecuteWrite(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return c.run(ctx, neo4j.AccessModeWrite, statement, params)
}

func (c *neo4jClient) ExecuteRead(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return c.run(ctx, neo4j.AccessModeRead, statement, params)
}

func (c *neo4jClient) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *neo4jClient) run(ctx context.Context, mode neo4j.AccessMode, statement string, params map[string]any) (Result, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, statement, params)
	if err != nil {
		return Result{}, neo4jError(statement, err)
	}

	var out Result
	for res.Next(ctx) {
		rec := res.Record()
		if out.Columns == nil {
			out.Columns = rec.Keys
		}
		record := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			record[key] = rec.Values[i]
		}
		out.Records = append(out.Records, record)
	}
	if err := res.Err(); err != nil {
		return Result{}, neo4jError(statement, err)
	}
	return out, nil
}

// neo4jError turns server-side rejections into ExecutionError and leaves
// transport failures as they are.
func neo4jError(statement string, err error) error {
	var ne *neo4j.Neo4jError
	if errors.As(err, &ne) {
		return &ExecutionError{Statement: statement, Message: ne.Code + ": " + ne.Msg}
	}
	return err
}
