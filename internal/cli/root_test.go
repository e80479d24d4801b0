package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inputDoc = `{
  "@context": {"@vocab": "http://schema.org/"},
  "@id": "http://example.org/alice",
  "@type": "Person",
  "name": "Alice"
}`

const frameDoc = `{
  "@context": {"@vocab": "http://schema.org/"},
  "@type": "Person"
}`

type fixture struct {
	in, frame, out string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		in:    filepath.Join(dir, "in.jsonld"),
		frame: filepath.Join(dir, "frame.jsonld"),
		out:   filepath.Join(dir, "out.jsonld"),
	}
	require.NoError(t, os.WriteFile(f.in, []byte(inputDoc), 0o644))
	require.NoError(t, os.WriteFile(f.frame, []byte(frameDoc), 0o644))
	return f
}

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stderr.String()
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(t)

	code, stderr := runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out)
	require.Equal(t, ExitSuccess, code, stderr)

	data, err := os.ReadFile(f.out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "output is not valid JSON:\n%s", data)
	assert.Contains(t, string(data), `"Alice"`)
	assert.Contains(t, stderr, "converting")
}

func TestRunLongFlags(t *testing.T) {
	f := newFixture(t)

	code, stderr := runCLI(t, "--infile", f.in, "--frame", f.frame, "--outfile", f.out)
	require.Equal(t, ExitSuccess, code, stderr)
	_, err := os.Stat(f.out)
	assert.NoError(t, err)
}

func TestRunUsageErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing outfile", []string{"-i", f.in, "-f", f.frame}, "outfile"},
		{"missing frame", []string{"-i", f.in, "-o", f.out}, "frame"},
		{"missing infile", []string{"-f", f.frame, "-o", f.out}, "infile"},
		{"no flags", nil, "required flag"},
		{"positional argument", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "extra"}, "extra"},
		{"unknown flag", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "--pretty"}, "pretty"},
		{"bad embed mode", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "--embed", "@sometimes"}, "@sometimes"},
		{"embed once", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "--embed", "@once"}, "@once"},
		{"embed link", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "--embed", "@link"}, "@link"},
		{"bad context mapping", []string{"-i", f.in, "-f", f.frame, "-o", f.out, "--context", "nopath"}, "nopath"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stderr := runCLI(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, tt.want)
			assert.Contains(t, stderr, "Usage:")

			_, err := os.Stat(f.out)
			assert.True(t, os.IsNotExist(err), "output file must not be written on usage errors")
		})
	}
}

func readOutput(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc), "output is not a JSON object:\n%s", data)
	return doc
}

func TestRunFramingFlags(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.in, []byte(`{
  "@context": {"@vocab": "http://schema.org/", "xsd": "http://www.w3.org/2001/XMLSchema#"},
  "@id": "alice",
  "@type": "Person",
  "name": "Alice",
  "age": {"@value": "42", "@type": "xsd:integer"}
}`), 0o644))

	code, stderr := runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out,
		"--base", "http://example.org/", "--native-types", "--omit-graph")
	require.Equal(t, ExitSuccess, code, stderr)

	doc := readOutput(t, f.out)
	assert.NotContains(t, doc, "@graph")
	assert.Equal(t, "http://example.org/alice", doc["@id"])
	assert.Equal(t, float64(42), doc["age"])

	code, stderr = runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out,
		"--base", "http://example.org/", "--omit-graph", "--embed", "@never")
	require.Equal(t, ExitSuccess, code, stderr)
	doc = readOutput(t, f.out)
	delete(doc, "@context")
	assert.Equal(t, map[string]interface{}{"@id": "http://example.org/alice"}, doc)
}

func TestRunOmitGraphFromEnvironment(t *testing.T) {
	f := newFixture(t)
	t.Setenv(EnvPrefix+"_OMIT_GRAPH", "true")

	code, stderr := runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out)
	require.Equal(t, ExitSuccess, code, stderr)
	doc := readOutput(t, f.out)
	assert.NotContains(t, doc, "@graph")
	assert.Equal(t, "Alice", doc["name"])
}

func TestRunProcessingErrorKeepsOutput(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.out, []byte("keep me"), 0o644))

	for _, args := range [][]string{
		{"-i", f.in + ".missing", "-f", f.frame, "-o", f.out},
		{"-i", f.in, "-f", f.frame + ".missing", "-o", f.out},
	} {
		code, stderr := runCLI(t, args...)
		assert.Equal(t, ExitProcessing, code)
		assert.Contains(t, stderr, "error processing")
		assert.Contains(t, stderr, "IO_ERROR")

		data, err := os.ReadFile(f.out)
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	}
}

func TestRunEnvironmentOverridesLogging(t *testing.T) {
	f := newFixture(t)
	t.Setenv(EnvPrefix+"_LOG_LEVEL", "debug")
	t.Setenv(EnvPrefix+"_LOG_FORMAT", "json")

	code, stderr := runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, `"msg":"framed node"`)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
}

func TestRunFlagBeatsEnvironment(t *testing.T) {
	f := newFixture(t)
	t.Setenv(EnvPrefix+"_LOG_LEVEL", "debug")

	code, stderr := runCLI(t, "-i", f.in, "-f", f.frame, "-o", f.out, "--log-level", "error")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stderr)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	buf.Reset()
	newLogger("bogus", "text", &buf).Info("fallback")
	assert.Contains(t, buf.String(), "level=INFO")
}
