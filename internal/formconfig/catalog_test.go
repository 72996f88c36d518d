package formconfig

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func formJSON(id, title string) string {
	return `{"` + id + `": {"title": "` + title + `", "type": "single-page", "pages": [{"pageNumber": 1, "fields": [{"id": "name", "type": "text"}]}], "groundTruth": {"name": "x"}}}`
}

func TestCatalogGetAndList(t *testing.T) {
	dir := t.TempDir()
	manual := writeCatalog(t, dir, "forms.json", `{
		"zeta": {"type": "single-page", "pages": [{"pageNumber": 1, "fields": []}]},
		"alpha": {"type": "single-page", "pages": [{"pageNumber": 1, "fields": []}]}
	}`)
	c := NewCatalog(manual, "", SourceManual)

	def, err := c.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", def.ID)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrFormNotFound)

	forms, err := c.List()
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "alpha", forms[0].ID)
	assert.Equal(t, "zeta", forms[1].ID)
}

func TestCatalogCachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	manual := writeCatalog(t, dir, "forms.json", formJSON("f", "Before"))
	c := NewCatalog(manual, "", SourceManual)

	def, err := c.Get("f")
	require.NoError(t, err)
	assert.Equal(t, "Before", def.Title)

	writeCatalog(t, dir, "forms.json", formJSON("f", "After"))
	def, _ = c.Get("f")
	assert.Equal(t, "Before", def.Title)

	require.NoError(t, c.Reload(context.Background()))
	def, _ = c.Get("f")
	assert.Equal(t, "After", def.Title)

	writeCatalog(t, dir, "forms.json", formJSON("f", "Again"))
	c.Invalidate()
	def, _ = c.Get("f")
	assert.Equal(t, "Again", def.Title)
}

func TestCatalogReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	manual := writeCatalog(t, dir, "forms.json", formJSON("f", "Good"))
	c := NewCatalog(manual, "", SourceManual)
	_, err := c.Get("f")
	require.NoError(t, err)

	writeCatalog(t, dir, "forms.json", `{not json`)
	assert.Error(t, c.Reload(context.Background()))

	def, err := c.Get("f")
	require.NoError(t, err)
	assert.Equal(t, "Good", def.Title)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Reload(ctx), context.Canceled)
}

func TestCatalogUseSwitchesSource(t *testing.T) {
	dir := t.TempDir()
	manual := writeCatalog(t, dir, "forms.json", formJSON("manual-form", "Manual"))
	generated := writeCatalog(t, dir, "generated.yaml", `
generated-form:
  title: Generated
  type: single-page
  pages:
    - pageNumber: 1
      fields:
        - id: name
          type: text
`)
	c := NewCatalog(manual, generated, SourceManual)
	_, err := c.Get("manual-form")
	require.NoError(t, err)

	require.NoError(t, c.Use(SourceLLM))
	assert.Equal(t, SourceLLM, c.Active())
	_, err = c.Get("manual-form")
	assert.ErrorIs(t, err, ErrFormNotFound)
	def, err := c.Get("generated-form")
	require.NoError(t, err)
	assert.Equal(t, "Generated", def.Title)

	assert.ErrorIs(t, c.Use("remote"), ErrUnknownSource)
}

func TestCatalogMissingFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(filepath.Join(dir, "absent.json"), filepath.Join(dir, "absent.yaml"), SourceManual)

	_, err := c.List()
	assert.Error(t, err)

	require.NoError(t, c.Use(SourceLLM))
	forms, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, forms)
}

func TestCatalogConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	manual := writeCatalog(t, dir, "forms.json", formJSON("f", "Title"))
	c := NewCatalog(manual, "", SourceManual)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				c.Invalidate()
			}
			_, err := c.Get("f")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceManual, src)

	src, err = ParseSource("llm-generated")
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, src)

	_, err = ParseSource("other")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestStaticCatalog(t *testing.T) {
	c := NewStaticCatalog(map[string]*FormDefinition{"s": {ID: "s", Title: "Static"}})
	def, err := c.Get("s")
	require.NoError(t, err)
	assert.Equal(t, "Static", def.Title)
	require.NoError(t, c.Reload(context.Background()))
}
