package cmd

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/finos/architecture-as-code-sub007/internal/metrics"
)

// ─── Test double ────────────────────────────────────────────────────────────

// mockIO is a test double for ValidateIO, LookupIO and WatchIO.
type mockIO struct {
	mu sync.Mutex
	// files maps path → content. When versions has an entry for the path,
	// successive reads pop from it and the last version sticks.
	files    map[string][]byte
	versions map[string][][]byte
	readErrs map[string]error
	globs    map[string][]string

	metricsPaths []string
	metricsErr   error

	changes   []string
	watchErr  error
	watched   []string
	readCalls []string
}

func (m *mockIO) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls = append(m.readCalls, path)
	if err, ok := m.readErrs[path]; ok {
		return nil, err
	}
	if vs := m.versions[path]; len(vs) > 0 {
		data := vs[0]
		if len(vs) > 1 {
			m.versions[path] = vs[1:]
		}
		return data, nil
	}
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *mockIO) Glob(pattern string) ([]string, error) {
	return m.globs[pattern], nil
}

func (m *mockIO) WriteMetrics(path string, _ *metrics.Recorder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metricsPaths = append(m.metricsPaths, path)
	return m.metricsErr
}

// Watch replays the configured changes and then closes the channel.
func (m *mockIO) Watch(_ context.Context, paths []string, _ time.Duration) (<-chan string, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	m.watched = paths
	ch := make(chan string, len(m.changes))
	for _, c := range m.changes {
		ch <- c
	}
	close(ch)
	return ch, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// tempWD returns a getwd func rooted in an empty temporary directory so no
// project config is picked up.
func tempWD(t *testing.T) (string, func() (string, error)) {
	t.Helper()
	dir := t.TempDir()
	return dir, func() (string, error) { return dir, nil }
}

// execute runs c with args and returns stdout.
func execute(c *cobra.Command, args ...string) (string, error) {
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

const (
	validDoc = `{
		"nodes": [{"unique-id": "web"}, {"unique-id": "api", "interfaces": [{"unique-id": "api-http"}]}],
		"relationships": [{"unique-id": "web-api", "relationship-type": {"connects": {
			"source": {"node": "web"}, "destination": {"node": "api", "interfaces": ["api-http"]}}}}]
	}`

	danglingDoc = `{
		"nodes": [{"unique-id": "n1"}],
		"relationships": [{"unique-id": "r1", "relationship-type": {"connects": {
			"source": {"node": "n1"}, "destination": {"node": "n2"}}}}]
	}`

	warningDoc = `{
		"nodes": [{"unique-id": "web"}, {"unique-id": "api"}, {"unique-id": "lonely"}],
		"relationships": [{"unique-id": "r", "relationship-type": {"connects": {"source": "web", "destination": "api"}}}]
	}`

	noRelationshipsDoc = `{"nodes": []}`

	validYAMLDoc = `
nodes:
  - unique-id: web
  - unique-id: api
relationships:
  - unique-id: r
    relationship-type:
      interacts:
        actor: web
        nodes: [api]
`

	badPattern = `{"properties": {
		"nodes": {"prefixItems": [{"properties": {"unique-id": {"const": "node-1"}}}]},
		"relationships": {"prefixItems": [{"properties": {
			"unique-id": {"const": "decision"},
			"relationship-type": {"const": {"options": [{"nodes": ["node-1"]}]}}
		}}]}
	}}`

	goodPattern = `{"properties": {
		"nodes": {"prefixItems": [{"oneOf": [
			{"properties": {"unique-id": {"const": "node-1"}}},
			{"properties": {"unique-id": {"const": "node-2"}}}
		]}]},
		"relationships": {"prefixItems": [{"properties": {
			"unique-id": {"const": "decision"},
			"relationship-type": {"const": {"options": [{"nodes": ["node-1"]}, {"nodes": ["node-2"]}]}}
		}}]}
	}}`
)
