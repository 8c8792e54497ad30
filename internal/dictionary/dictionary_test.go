package dictionary_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/dictionary"
)

func TestContains(t *testing.T) {
	d := dictionary.New("applepie", "Café", "shoes")

	assert.True(t, d.Contains("applepie"))
	assert.True(t, d.Contains("APPLEPIE"), "case is ignored")
	assert.True(t, d.Contains("cafe"), "diacritics are ignored")
	assert.True(t, d.Contains("café"))
	assert.False(t, d.Contains("a83jzK29dXpQmN7z"))
	assert.False(t, d.Contains(""))
}

func TestNumbersAreWords(t *testing.T) {
	d := dictionary.New()
	for _, s := range []string{"0", "999999999", "1,000", "3.14"} {
		assert.Truef(t, d.Contains(s), "%q", s)
	}
	for _, s := range []string{".5", "12a", "1,", "-"} {
		assert.Falsef(t, d.Contains(s), "%q", s)
	}
}

func TestLoad(t *testing.T) {
	d, err := dictionary.Load(strings.NewReader("# comment\n\nshop\n  deal  \n"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.True(t, d.Contains("deal"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words")
	require.NoError(t, os.WriteFile(path, []byte("search\nengine\n"), 0o600))
	d, err := dictionary.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, d.Contains("engine"))

	_, err = dictionary.LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEmbedded(t *testing.T) {
	d := dictionary.Embedded()
	assert.Greater(t, d.Len(), 300)
	assert.True(t, d.Contains("shopping"))
}

func TestConcurrentLookups(t *testing.T) {
	d := dictionary.Embedded()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = d.Contains("Search")
			}
		}()
	}
	wg.Wait()
}
