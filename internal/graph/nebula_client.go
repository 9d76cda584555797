package graph

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	nebula "github.com/vesoft-inc/nebula-go/v3"
)

// NebulaClient submits nGQL over a nebula-go connection pool. Every call
// takes a fresh session bound to the configured space.
type NebulaClient struct {
	pool     *nebula.ConnectionPool
	space    string
	username string
	password string
}

var _ Client = (*NebulaClient)(nil)

// NewNebulaClient builds the connection pool and checks that a session can be
// opened on the space.
func NewNebulaClient(ctx context.Context, opts Options, logger *slog.Logger) (*NebulaClient, error) {
	addrs, err := ParseHosts(opts.Hosts)
	if err != nil {
		return nil, err
	}
	if opts.Space == "" {
		return nil, ErrMissingSpace
	}
	if logger == nil {
		logger = slog.Default()
	}

	conf := nebula.GetDefaultConf()
	if opts.Timeout > 0 {
		conf.TimeOut = opts.Timeout
	}
	if opts.IdleTime > 0 {
		conf.IdleTime = opts.IdleTime
	}
	if opts.MaxConnections > 0 {
		conf.MaxConnPoolSize = opts.MaxConnections
	}
	if opts.MinConnections > 0 {
		conf.MinConnPoolSize = opts.MinConnections
	}

	pool, err := nebula.NewConnectionPool(addrs, conf, nebulaLogger{logger.With("component", "nebula")})
	if err != nil {
		return nil, fmt.Errorf("create nebula pool: %w", err)
	}

	c := &NebulaClient{
		pool:     pool,
		space:    opts.Space,
		username: opts.Username,
		password: opts.Password,
	}
	if err := c.VerifyConnectivity(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}
	return c, nil
}

// ParseHosts turns "host:port" entries into nebula addresses. Entries may
// themselves be comma separated.
func ParseHosts(hosts []string) ([]nebula.HostAddress, error) {
	var addrs []nebula.HostAddress
	for _, entry := range hosts {
		for _, hp := range strings.Split(entry, ",") {
			hp = strings.TrimSpace(hp)
			if hp == "" {
				continue
			}
			host, portText, err := net.SplitHostPort(hp)
			if err != nil {
				return nil, fmt.Errorf("parse graph host %q: %w", hp, err)
			}
			port, err := strconv.Atoi(portText)
			if err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("parse graph host %q: invalid port", hp)
			}
			addrs = append(addrs, nebula.HostAddress{Host: host, Port: port})
		}
	}
	if len(addrs) == 0 {
		return nil, ErrMissingHosts
	}
	return addrs, nil
}

func (c *NebulaClient) ExecuteWrite(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return c.execute(ctx, statement, params)
}

// ExecuteRead is the same as ExecuteWrite; nebula sessions have no access mode.
func (c *NebulaClient) ExecuteRead(ctx context.Context, statement string, params map[string]any) (Result, error) {
	return c.execute(ctx, statement, params)
}

func (c *NebulaClient) VerifyConnectivity(ctx context.Context) error {
	_, err := c.execute(ctx, "YIELD 1", nil)
	return err
}

func (c *NebulaClient) Close(context.Context) error {
	c.pool.Close()
	return nil
}

func (c *NebulaClient) execute(ctx context.Context, statement string, params map[string]any) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	session, err := c.pool.GetSession(c.username, c.password)
	if err != nil {
		return Result{}, fmt.Errorf("acquire nebula session: %w", err)
	}
	defer session.Release()

	use := "USE " + c.space
	rs, err := session.Execute(use)
	if err != nil {
		return Result{}, err
	}
	if !rs.IsSucceed() {
		return Result{}, &ExecutionError{Statement: use, Code: int(rs.GetErrorCode()), Message: rs.GetErrorMsg()}
	}

	if len(params) > 0 {
		rs, err = session.ExecuteWithParameter(statement, params)
	} else {
		rs, err = session.Execute(statement)
	}
	if err != nil {
		return Result{}, err
	}
	if !rs.IsSucceed() {
		return Result{}, &ExecutionError{Statement: statement, Code: int(rs.GetErrorCode()), Message: rs.GetErrorMsg()}
	}
	return convertResultSet(rs)
}

func convertResultSet(rs *nebula.ResultSet) (Result, error) {
	cols := rs.GetColNames()
	res := Result{Columns: cols}
	for i := 0; i < rs.GetRowSize(); i++ {
		row, err := rs.GetRowValuesByIndex(i)
		if err != nil {
			return Result{}, err
		}
		record := make(Record, len(cols))
		for j, col := range cols {
			v, err := row.GetValueByIndex(j)
			if err != nil {
				return Result{}, err
			}
			record[col] = nebulaValue(v)
		}
		res.Records = append(res.Records, record)
	}
	return res, nil
}

func nebulaValue(v *nebula.ValueWrapper) any {
	switch {
	case v == nil || v.IsNull():
		return nil
	case v.IsBool():
		b, _ := v.AsBool()
		return b
	case v.IsInt():
		n, _ := v.AsInt()
		return n
	case v.IsFloat():
		f, _ := v.AsFloat()
		return f
	case v.IsString():
		s, _ := v.AsString()
		return s
	default:
		return v.String()
	}
}

// nebulaLogger adapts slog to the nebula-go logger interface.
type nebulaLogger struct {
	logger *slog.Logger
}

func (l nebulaLogger) Info(msg string)  { l.logger.Info(msg) }
func (l nebulaLogger) Warn(msg string)  { l.logger.Warn(msg) }
func (l nebulaLogger) Error(msg string) { l.logger.Error(msg) }
func (l nebulaLogger) Fatal(msg string) { l.logger.Error(msg, "fatal", true) }
