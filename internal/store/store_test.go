package store_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/engine"
	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/store"
)

var names = engine.Default().Names()

const occurrenceJSON = `{"requests":[{"url":"https://www.bing.com/","timestamp":1,"responseHeaders":{},"redirectChain":[],"is_tracker":false,"frameId":"F1"}],"ads":[],"clicked_url":"","search_term":"shoes"}`

func TestReadPadsMissingEngines(t *testing.T) {
	t.Parallel()
	c, err := store.Read(strings.NewReader(`[[`+occurrenceJSON+`],[]]`), names)
	require.NoError(t, err)
	require.Len(t, c, len(names))
	assert.Equal(t, engine.Bing, c[0].Engine)
	assert.Len(t, c[0].Occurrences, 1)
	for _, et := range c[1:] {
		assert.NotNil(t, et.Occurrences)
		assert.Empty(t, et.Occurrences)
	}
}

func TestReadRejectsExtraCollections(t *testing.T) {
	t.Parallel()
	_, err := store.Read(strings.NewReader(`[[],[],[],[],[],[]]`), names)
	assert.Error(t, err)
	_, err = store.Read(strings.NewReader(`{`), names)
	assert.Error(t, err)
}

func TestSaveLoadKeepsUnknownKeys(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data", "all_se_results.json")
	c, err := store.Read(strings.NewReader(`[[`+occurrenceJSON+`]]`), names)
	require.NoError(t, err)

	require.NoError(t, store.Save(path, c))
	loaded, err := store.Load(path, names)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frameId":"F1"`)
	assert.Contains(t, string(data), `"search_term":"shoes"`)
	assert.True(t, strings.HasPrefix(string(data), `[[{`))
	assert.True(t, strings.HasSuffix(string(data), "[],[],[],[]]\n"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	_, err := store.Load(filepath.Join(t.TempDir(), "nope.json"), names)
	assert.ErrorIs(t, err, store.ErrCorpusNotFound)
}

func TestWriteIsStable(t *testing.T) {
	t.Parallel()
	c, err := store.Read(strings.NewReader(`[[`+occurrenceJSON+`]]`), names)
	require.NoError(t, err)
	var a, b bytes.Buffer
	require.NoError(t, store.Write(&a, c))
	require.NoError(t, store.Write(&b, c))
	assert.Equal(t, a.String(), b.String())
}

func TestCombine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "google.json"), []byte(`[`+occurrenceJSON+`,`+occurrenceJSON+`]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qwant.json"), []byte(`[]`), 0o600))

	c, err := store.Combine(dir, names, logger.NewNop())
	require.NoError(t, err)
	require.Len(t, c, 5)
	for i, et := range c {
		assert.Equal(t, names[i], et.Engine)
		assert.NotNil(t, et.Occurrences)
	}
	assert.Empty(t, c[0].Occurrences)
	assert.Len(t, c[1].Occurrences, 2)
	assert.Empty(t, c[4].Occurrences)
}

func TestCombineBadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bing.json"), []byte(`{"not":"an array"}`), 0o600))
	_, err := store.Combine(dir, names, logger.NewNop())
	assert.Error(t, err)
}
