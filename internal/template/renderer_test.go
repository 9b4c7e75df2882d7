package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/pkg/errors"
)

func TestRenderLenient(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Hello {{title}}", false, map[string]interface{}{"title": "T"})
	require.NoError(t, err)
	assert.Equal(t, "Hello T", out)
}

func TestRenderLenientMissingVariable(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Hello {{missing}}", false, map[string]interface{}{"title": "T"})
	require.NoError(t, err)
	assert.Equal(t, "Hello ", out)
}

func TestRenderStrictMissingVariable(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("Hello {{missing}}", true, map[string]interface{}{"title": "T"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRender))
	assert.Contains(t, err.Error(), "missing")
}

func TestRenderStrictAllDefined(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Hello {{USER_NAME}} from {{APP_NAME}}", true, map[string]interface{}{
		"USER_NAME": "Ann Lee",
		"APP_NAME":  "Orvium",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ann Lee from Orvium", out)
}

func TestRenderConditional(t *testing.T) {
	r := NewRenderer()
	source := "{{#if USER_MESSAGE}}Message: {{USER_MESSAGE}}{{/if}}"

	out, err := r.Render(source, false, map[string]interface{}{"USER_MESSAGE": "please review"})
	require.NoError(t, err)
	assert.Equal(t, "Message: please review", out)

	out, err = r.Render(source, false, map[string]interface{}{"USER_MESSAGE": ""})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRenderIteration(t *testing.T) {
	r := NewRenderer()
	source := "{{#each PUBLICATION_AUTHORS}}{{FIRST_NAME}} {{LAST_NAME}};{{/each}}"
	vars := map[string]interface{}{
		"PUBLICATION_AUTHORS": []map[string]interface{}{
			{"FIRST_NAME": "Ann", "LAST_NAME": "Lee"},
			{"FIRST_NAME": "Bob", "LAST_NAME": "Ray"},
		},
	}

	out, err := r.Render(source, false, vars)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee;Bob Ray;", out)
}

func TestRenderStrictIgnoresIterationScope(t *testing.T) {
	r := NewRenderer()

	// FIRST_NAME resolves against each author, not the top-level bag, so
	// strict mode must not flag it.
	source := "{{#each PUBLICATION_AUTHORS}}{{FIRST_NAME}}{{/each}}"
	out, err := r.Render(source, true, map[string]interface{}{
		"PUBLICATION_AUTHORS": []map[string]interface{}{{"FIRST_NAME": "Ann"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", out)
}

func TestRenderStrictChecksBlockArgument(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("{{#if MISSING_FLAG}}x{{/if}}", true, map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestRenderInvalidSource(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("{{#if}}{{/each}}", false, map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestRenderCachesCompilation(t *testing.T) {
	r := NewRenderer()
	source := "Hello {{title}}"

	_, err := r.Render(source, false, map[string]interface{}{"title": "one"})
	require.NoError(t, err)

	_, ok := r.compiled.Get(sourceKey(source))
	assert.True(t, ok)

	// A second render with different vars reuses the compilation.
	out, err := r.Render(source, false, map[string]interface{}{"title": "two"})
	require.NoError(t, err)
	assert.Equal(t, "Hello two", out)
}

func TestMissingVariablesNestedPaths(t *testing.T) {
	// Only the root of a dotted path is checked against the bag.
	missing := missingVariables("{{USER.name}} {{ABSENT.thing}}", map[string]interface{}{
		"USER": map[string]interface{}{"name": "x"},
	})
	assert.Equal(t, []string{"ABSENT"}, missing)
}
