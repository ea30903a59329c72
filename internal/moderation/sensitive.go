// Package moderation holds the content policy consulted before user text is
// persisted. The word list is loaded once at startup and shared read-only.
package moderation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

type ContentPolicy interface {
	CheckSensitive(text string) (bool, []string)
}

type WordFilter struct {
	words  []string
	folded []string
}

func NewWordFilter(words []string) *WordFilter {
	seen := make(map[string]struct{}, len(words))
	f := &WordFilter{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		f.words = append(f.words, w)
	}
	sort.Strings(f.words)
	f.folded = make([]string, len(f.words))
	for i, w := range f.words {
		f.folded[i] = fold(w)
	}
	return f
}

// LoadWordFilter reads one term per line. An empty path or a missing file
// yields a filter that accepts everything.
func LoadWordFilter(path string) (*WordFilter, error) {
	if path == "" {
		return NewWordFilter(nil), nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewWordFilter(nil), nil
		}
		return nil, fmt.Errorf("open sensitive words: %w", err)
	}
	defer file.Close()
	return ReadWordFilter(file)
}

func ReadWordFilter(r io.Reader) (*WordFilter, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sensitive words: %w", err)
	}
	return NewWordFilter(words), nil
}

func (f *WordFilter) Len() int {
	return len(f.words)
}

// CheckSensitive reports whether text contains any listed term, ignoring case.
func (f *WordFilter) CheckSensitive(text string) (bool, []string) {
	if text == "" || len(f.words) == 0 {
		return false, nil
	}
	haystack := fold(text)
	var found []string
	for i, w := range f.folded {
		if strings.Contains(haystack, w) {
			found = append(found, f.words[i])
		}
	}
	return len(found) > 0, found
}

// cases.Caser is stateful, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
