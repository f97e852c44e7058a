package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	writeFile(t, path, "Hello there. Dr. Smith is in.\nHow are you?")

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.False(t, c.Defaulted())
	assert.Equal(t, path, c.Source())
	assert.Equal(t, []string{"hello there.", "dr. smith is in.", "how are you?"}, c.Sentences())
}

func TestLoad_KeepsCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	writeFile(t, path, "Hello there. How are you?")

	c, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello there.", "How are you?"}, c.Sentences())
}

func TestLoad_MissingFileUsesDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.txt"), true)
	require.NoError(t, err)
	assert.True(t, c.Defaulted())
	require.Equal(t, 1, c.Len())
	s, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, "hello, i am a basic chatbot. how can i help you?", s)
}

func TestLoad_DirectoryIsAnError(t *testing.T) {
	_, err := Load(t.TempDir(), true)
	require.Error(t, err)
}

func TestLoad_Pattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "two.txt"), "Second file.")
	writeFile(t, filepath.Join(dir, "a", "one.txt"), "First file. Still first.")
	writeFile(t, filepath.Join(dir, "a", "skip.md"), "Not a corpus file.")

	c, err := Load(filepath.Join(dir, "**", "*.txt"), true)
	require.NoError(t, err)
	assert.False(t, c.Defaulted())
	assert.Equal(t, []string{"first file.", "still first.", "second file."}, c.Sentences())
}

func TestLoad_PatternWithoutMatches(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "*.txt"), false)
	require.NoError(t, err)
	assert.True(t, c.Defaulted())
	assert.Equal(t, []string{DefaultSentence}, c.Sentences())
}

func TestCorpus_Accessors(t *testing.T) {
	c := FromSentences([]string{"one", "  ", "two", ""}, false)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "one\ntwo", c.Text())

	got := c.Sentences()
	got[0] = "changed"
	s, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, "one", s)

	_, err = c.At(2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.At(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFromText_Empty(t *testing.T) {
	c := FromText("   ", true)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Sentences())
}
