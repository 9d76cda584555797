package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nebula "github.com/vesoft-inc/nebula-go/v3"
)

func TestParseHosts(t *testing.T) {
	addrs, err := ParseHosts([]string{"127.0.0.1:9669, graphd:9670", "", "[::1]:9671"})
	require.NoError(t, err)
	assert.Equal(t, []nebula.HostAddress{
		{Host: "127.0.0.1", Port: 9669},
		{Host: "graphd", Port: 9670},
		{Host: "::1", Port: 9671},
	}, addrs)

	_, err = ParseHosts(nil)
	assert.ErrorIs(t, err, ErrMissingHosts)

	_, err = ParseHosts([]string{"graphd"})
	assert.Error(t, err)

	_, err = ParseHosts([]string{"graphd:99999"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "gremlin"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)

	c, err := New(context.Background(), Options{Driver: DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)
}

func TestNebulaClientRequiresSpace(t *testing.T) {
	_, err := NewNebulaClient(context.Background(), Options{Hosts: []string{"127.0.0.1:9669"}}, nil)
	assert.ErrorIs(t, err, ErrMissingSpace)
}

func TestNeo4jClientRequiresHost(t *testing.T) {
	_, err := NewNeo4jClient(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingHosts)
}

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	c := NewMemoryClient().FailOn("bad", boom)
	c.PushResult(Result{Columns: []string{"n"}, Records: []Record{{"n": 1}}})

	res, err := c.ExecuteWrite(ctx, "INSERT VERTEX t ( a )  VALUES 1:( 1)", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.Columns)

	_, err = c.ExecuteRead(ctx, "YIELD 1", nil)
	require.NoError(t, err)

	_, err = c.ExecuteWrite(ctx, "bad statement", nil)
	assert.ErrorIs(t, err, boom)

	executed := c.Executed()
	require.Len(t, executed, 2)
	assert.True(t, executed[0].Write)
	assert.False(t, executed[1].Write)
	assert.Equal(t, map[string]any{"x": 1}, executed[0].Params)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.ExecuteWrite(cancelled, "YIELD 2", nil)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, c.Close(ctx))
	assert.True(t, c.Closed())
}

func TestExecutionErrorTruncatesStatement(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	err := &ExecutionError{Statement: string(long), Code: -1005, Message: "SemanticError"}
	assert.Contains(t, err.Error(), "code -1005")
	assert.Less(t, len(err.Error()), 200)
}

func TestExecutionErrorTruncatesOnRuneBoundary(t *testing.T) {
	stmt := `INSERT VERTEX player ( name )  VALUES "1":( "` + strings.Repeat("é", 200) + `")`
	err := &ExecutionError{Statement: stmt, Code: -1005, Message: "SemanticError"}

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	shown := msg[strings.Index(msg, "INSERT"):]
	assert.Equal(t, 120, utf8.RuneCountInString(shown))
}
