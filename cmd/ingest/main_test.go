package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaYAML = `
space: basketball
tags:
  - name: player
    fields:
      - {name: name, type: string}
      - {name: age, type: int}
edges:
  - name: follow
    fields:
      - {name: degree, type: int}
`

const datasetJSON = `{
  "vertices": [
    {"tag": "player", "id": "100", "props": {"name": "Tim", "age": 42}},
    {"tag": "player", "id": "101", "props": {"name": "Tony", "age": 36}}
  ],
  "edges": [
    {"type": "follow", "src": "100", "dst": "101", "props": {"degree": 95}}
  ]
}`

func writeInputs(t *testing.T) string {
	t.Helper()
	t.Setenv("GRAPHBATCH_CONFIG", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(schemaYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataset.json"), []byte(datasetJSON), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRender(t *testing.T) {
	dir := writeInputs(t)

	out, err := execute(t, "render",
		"--schema", filepath.Join(dir, "schema.yaml"),
		"--dataset-dir", dir,
		"--batch-size", "1",
	)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT VERTEX player ( name,age )  VALUES "100":( "Tim", 42);`+"\n"+
			`INSERT VERTEX player ( name,age )  VALUES "101":( "Tony", 36);`+"\n"+
			`INSERT EDGE follow ( degree )  VALUES "100"->"101":( 95);`+"\n",
		out)
}

func TestRenderCypherToFile(t *testing.T) {
	dir := writeInputs(t)
	t.Setenv("GRAPH_DRIVER", "memory")
	output := filepath.Join(dir, "out.cypher")

	out, err := execute(t, "render",
		"--schema", filepath.Join(dir, "schema.yaml"),
		"--dataset", filepath.Join(dir, "dataset.json"),
		"--dialect", "cypher",
		"-o", output,
	)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `MERGE (v0 {vid: "100"}) SET v0:player`)
}

func TestApplyWithMemoryDriver(t *testing.T) {
	dir := writeInputs(t)
	t.Setenv("GRAPH_DRIVER", "memory")

	_, err := execute(t, "apply",
		"--schema", filepath.Join(dir, "schema.yaml"),
		"--dataset-dir", dir,
		"--workers", "2",
		"--concurrency", "1",
	)
	require.NoError(t, err)
}

func TestMissingDataset(t *testing.T) {
	dir := writeInputs(t)

	_, err := execute(t, "render",
		"--schema", filepath.Join(dir, "schema.yaml"),
		"--dataset-dir", t.TempDir(),
	)
	assert.ErrorIs(t, err, errMissingDataset)
}

func TestInvalidFlagValue(t *testing.T) {
	dir := writeInputs(t)

	_, err := execute(t, "apply",
		"--schema", filepath.Join(dir, "schema.yaml"),
		"--dataset-dir", dir,
		"--workers", "0",
	)
	assert.Error(t, err)
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	errDisk := errors.New("disk full")

	w := &failingCloser{closeErr: errDisk}
	err := writeAndClose(w, []string{"INSERT VERTEX t ( a )  VALUES \"1\":( 1)"})
	assert.ErrorIs(t, err, errDisk)
	assert.True(t, w.closed)
	assert.Equal(t, "INSERT VERTEX t ( a )  VALUES \"1\":( 1);\n", w.String())

	ok := &failingCloser{}
	require.NoError(t, writeAndClose(ok, nil))
	assert.True(t, ok.closed)
}
