// Package store reads and writes the trace corpus: a JSON array holding
// one array of occurrences per engine, in engine table order.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/model"
)

// ErrCorpusNotFound is returned when the corpus file does not exist.
var ErrCorpusNotFound = errors.New("corpus not found")

// Read decodes a corpus and labels its collections with names. Missing
// trailing collections are empty; extra ones are an error.
func Read(r io.Reader, names []string) (model.Corpus, error) {
	var raw [][]model.Occurrence
	if err := json.NewDecoder(bufio.NewReader(r)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if len(raw) > len(names) {
		return nil, fmt.Errorf("corpus has %d engine collections, expected at most %d", len(raw), len(names))
	}
	c := make(model.Corpus, len(names))
	for i, name := range names {
		c[i] = model.EngineTrace{Engine: name, Occurrences: []model.Occurrence{}}
		if i < len(raw) && raw[i] != nil {
			c[i].Occurrences = raw[i]
		}
	}
	return c, nil
}

// Load reads the corpus file at path.
func Load(path string, names []string) (model.Corpus, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	c, err := Read(f, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write encodes the corpus as one JSON document.
func Write(w io.Writer, c model.Corpus) error {
	raw := make([][]model.Occurrence, len(c))
	for i, et := range c {
		raw[i] = et.Occurrences
		if raw[i] == nil {
			raw[i] = []model.Occurrence{}
		}
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	return bw.Flush()
}

// Save writes the corpus to path. The file is replaced only once the new
// content is complete.
func Save(path string, c model.Corpus) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Write(tmp, c); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace corpus file: %w", err)
	}
	return nil
}

// Combine reads the crawler output <dir>/<name>.json of every engine. An
// engine without a file gets an empty collection so that positions in the
// corpus keep matching the engine order.
func Combine(dir string, names []string, log logger.Logger) (model.Corpus, error) {
	c := make(model.Corpus, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+".json")
		occs, err := readEngineFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("no crawl results for engine", logger.String("engine", name), logger.String("path", path))
			occs = []model.Occurrence{}
		} else if err != nil {
			return nil, err
		}
		log.Info("engine crawl loaded", logger.String("engine", name), logger.Int("occurrences", len(occs)))
		c = append(c, model.EngineTrace{Engine: name, Occurrences: occs})
	}
	return c, nil
}

func readEngineFile(path string) ([]model.Occurrence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var occs []model.Occurrence
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&occs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if occs == nil {
		occs = []model.Occurrence{}
	}
	return occs, nil
}
