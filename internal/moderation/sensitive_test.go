package moderation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSensitiveIgnoresCase(t *testing.T) {
	f := NewWordFilter([]string{"Spam", "scam", " ", "spam"})

	hit, words := f.CheckSensitive("this is SPAM and a ScAm")
	assert.True(t, hit)
	assert.ElementsMatch(t, []string{"Spam", "scam", "spam"}, words)
}

func TestCheckSensitiveNoMatch(t *testing.T) {
	f := NewWordFilter([]string{"spam"})

	hit, words := f.CheckSensitive("hello there")
	assert.False(t, hit)
	assert.Empty(t, words)

	hit, _ = f.CheckSensitive("")
	assert.False(t, hit)
}

func TestEmptyFilterAcceptsAll(t *testing.T) {
	f := NewWordFilter(nil)
	hit, _ := f.CheckSensitive("anything")
	assert.False(t, hit)
	assert.Equal(t, 0, f.Len())
}

func TestReadWordFilter(t *testing.T) {
	f, err := ReadWordFilter(strings.NewReader("foo\n\nbar\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestLoadWordFilterMissingFile(t *testing.T) {
	f, err := LoadWordFilter(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestLoadWordFilterFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("badword\n"), 0o600))

	f, err := LoadWordFilter(path)
	require.NoError(t, err)
	hit, words := f.CheckSensitive("a BADWORD here")
	assert.True(t, hit)
	assert.Equal(t, []string{"badword"}, words)
}

func TestCheckSensitiveFoldsCase(t *testing.T) {
	f := NewWordFilter([]string{"Spam", "坏话"})

	hit, words := f.CheckSensitive("SPAM and 坏话")
	assert.True(t, hit)
	assert.ElementsMatch(t, []string{"Spam", "坏话"}, words)

	hit, words = f.CheckSensitive("nothing here")
	assert.False(t, hit)
	assert.Empty(t, words)
}
