package filings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleFacts = `{
  "cik": 320193,
  "entityName": "Apple Inc.",
  "facts": {
    "us-gaap": {
      "Assets": {
        "label": "Assets",
        "units": {"USD": [{"end": "2023-09-30", "val": 352583000000, "filed": "2023-11-03"}]}
      }
    }
  }
}`

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDirLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "CIK0000320193.json", appleFacts)

	l := NewDirLoader(dir, time.Second)
	doc, err := l.Load(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", doc.EntityName)
	assert.Equal(t, "0000320193", string(doc.CIK))
	assert.Contains(t, doc.Facts["us-gaap"], "Assets")
}

func TestDirLoader_NotFound(t *testing.T) {
	l := NewDirLoader(t.TempDir(), 0)
	_, err := l.Load(context.Background(), "0000000001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDirLoader_Corrupt(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "CIK0000000002.json", `{"cik": 2, "facts": {`)

	l := NewDirLoader(dir, time.Second)
	_, err := l.Load(context.Background(), "2")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "filings: parse")
}

func TestDirLoader_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "CIK0000320193.json", appleFacts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewDirLoader(dir, time.Second)
	doc, err := l.Load(ctx, "320193")
	// Either the read won the race or the cancellation did; never both.
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Nil(t, doc)
	} else {
		assert.NotNil(t, doc)
	}
}

func TestDirLoader_Path(t *testing.T) {
	l := NewDirLoader("/data", 0)
	assert.Equal(t, filepath.Join("/data", "CIK0000320193.json"), l.Path("320193"))
	assert.Equal(t, filepath.Join("/data", "CIK0000320193.json"), l.Path("CIK0000320193"))
	assert.Equal(t, "/data", l.Dir())
	assert.Equal(t, DefaultTimeout, l.timeout)
}

func TestDirLoader_List(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "CIK0000789019.json", "{}")
	writeDoc(t, dir, "CIK0000320193.json", "{}")
	writeDoc(t, dir, "notes.txt", "")
	writeDoc(t, dir, "CIK0000000003.json.tmp", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "CIKdir.json"), 0o755))

	ciks, err := NewDirLoader(dir, 0).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0000320193", "0000789019"}, ciks)
}

func TestDirLoader_ListMissingDir(t *testing.T) {
	_, err := NewDirLoader(filepath.Join(t.TempDir(), "missing"), 0).List(context.Background())
	require.Error(t, err)
}
