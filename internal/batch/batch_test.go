package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gofex/gofex"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testEngine(t *testing.T) *gofex.Engine {
	t.Helper()
	e, err := gofex.NewEngine(gofex.RuleSet{Rules: []gofex.Rule{
		{Name: "modernize", Pattern: "old($x)", Template: "new($x)"},
	}})
	require.NoError(t, err)
	return e
}

func TestExpand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package p\n")
	writeFile(t, dir, "b.gno", "package p\n")
	writeFile(t, dir, "notes.txt", "not source\n")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "c.go", "package q\n")

	t.Run("explicit file", func(t *testing.T) {
		t.Parallel()
		files, err := Expand([]string{a}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{a}, files)
	})

	t.Run("directory requires recursive", func(t *testing.T) {
		t.Parallel()
		_, err := Expand([]string{dir}, false)
		assert.Error(t, err)
	})

	t.Run("recursive walk filters and sorts", func(t *testing.T) {
		t.Parallel()
		files, err := Expand([]string{dir}, true)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.go"),
			filepath.Join(dir, "b.gno"),
			filepath.Join(sub, "c.go"),
		}, files)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := Expand([]string{filepath.Join(dir, "absent.go")}, false)
		assert.Error(t, err)
	})
}

func TestProcess(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	changed := writeFile(t, dir, "changed.go", "package p\n\nvar a = old(1)\n")
	same := writeFile(t, dir, "same.go", "package p\n\nvar a = 1\n")
	broken := writeFile(t, dir, "broken.go", "package p\n\nfunc broken( {\n")

	results, err := Process(context.Background(), zap.NewNop(), testEngine(t), []string{dir}, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byPath := make(map[string]FileResult, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}

	assert.Error(t, byPath[broken].Err)

	require.NoError(t, byPath[changed].Err)
	assert.True(t, byPath[changed].Changed())
	assert.Equal(t, "package p\n\nvar a = new(1)\n", byPath[changed].Result.Text)

	require.NoError(t, byPath[same].Err)
	assert.False(t, byPath[same].Changed())
}

func TestWriteInPlace(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package p\n\nvar a = old(1)\n")

	results, err := Process(context.Background(), zap.NewNop(), testEngine(t), []string{path}, Options{})
	require.NoError(t, err)
	require.NoError(t, WriteInPlace(results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package p\n\nvar a = new(1)\n", string(data))
}

func TestProcessCancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, dir, fmt.Sprintf("f%d.go", i), "package p\n\nvar a = old(1)\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Process(ctx, zap.NewNop(), testEngine(t), []string{dir}, Options{Recursive: true})
	assert.ErrorIs(t, err, context.Canceled)
	// Process has waited out any started workers; nothing escapes.
	assert.Nil(t, results)
}
