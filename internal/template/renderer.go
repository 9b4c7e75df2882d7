package template

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/aymerick/raymond"
	cache "github.com/patrickmn/go-cache"

	"github.com/orvium/orvium-api/pkg/errors"
)

// Renderer compiles handlebars sources and fills them with a variable bag.
// Compiled templates are cached keyed by the sha256 of the source, so a
// changed source never serves a stale compilation.
type Renderer struct {
	compiled *cache.Cache
}

func NewRenderer() *Renderer {
	return &Renderer{
		compiled: cache.New(cache.NoExpiration, 0),
	}
}

// Render fills source with vars. In lenient mode a reference to an unset
// variable renders empty; in strict mode it fails with a RenderError.
func (r *Renderer) Render(source string, strict bool, vars map[string]interface{}) (string, error) {
	if strict {
		if missing := missingVariables(source, vars); len(missing) > 0 {
			return "", errors.RenderError(
				fmt.Sprintf("undefined template variables: %s", strings.Join(missing, ", ")), nil)
		}
	}

	tpl, err := r.compile(source)
	if err != nil {
		return "", errors.RenderError("template compilation failed", err)
	}

	out, err := tpl.Exec(vars)
	if err != nil {
		return "", errors.RenderError("template execution failed", err)
	}
	return out, nil
}

func (r *Renderer) compile(source string) (*raymond.Template, error) {
	key := sourceKey(source)
	if cached, ok := r.compiled.Get(key); ok {
		return cached.(*raymond.Template), nil
	}

	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, err
	}
	r.compiled.Set(key, tpl, cache.NoExpiration)
	return tpl, nil
}

func sourceKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

var mustacheRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// blockHelpers whose first argument is a variable reference to check.
var blockHelpers = map[string]bool{
	"#if": true, "#unless": true, "#each": true, "#with": true,
}

// missingVariables extracts the root path of every mustache reference in
// source and reports those absent from vars. Block closers, else branches
// and data references are skipped, as is anything inside an each/with body,
// where references resolve against the iteration scope rather than the bag.
func missingVariables(source string, vars map[string]interface{}) []string {
	seen := make(map[string]bool)
	var missing []string
	scopeDepth := 0

	check := func(ref string) {
		root := strings.SplitN(ref, ".", 2)[0]
		if root == "" || root == "this" || seen[root] {
			return
		}
		seen[root] = true
		if _, ok := vars[root]; !ok {
			missing = append(missing, root)
		}
	}

	for _, match := range mustacheRe.FindAllStringSubmatch(source, -1) {
		fields := strings.Fields(match[1])
		if len(fields) == 0 {
			continue
		}

		ref := fields[0]
		switch {
		case ref == "/each" || ref == "/with":
			if scopeDepth > 0 {
				scopeDepth--
			}
		case strings.HasPrefix(ref, "#"):
			if blockHelpers[ref] && len(fields) > 1 && scopeDepth == 0 {
				check(fields[1])
			}
			if ref == "#each" || ref == "#with" {
				scopeDepth++
			}
		case strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, "!"), strings.HasPrefix(ref, ">"):
			continue
		case ref == "else" || ref == "this" || strings.HasPrefix(ref, "@"):
			continue
		default:
			if scopeDepth == 0 {
				check(ref)
			}
		}
	}
	return missing
}
