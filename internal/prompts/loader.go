// Package prompts serves the language model prompt templates embedded from *.json files.
//
// Each file is a flat object of key to template. Templates use {{.Name}} placeholders
// that Render fills from a string map.
package prompts

import (
	"embed"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
)

//go:embed *.json
var files embed.FS

type fileLoader func() (map[string]string, error)

// loaders holds one fileLoader per filename; each file is parsed at most once.
var loaders sync.Map

var placeholderRe = regexp.MustCompile(`\{\{\.([A-Za-z0-9_]+)\}\}`)

func templates(filename string) (map[string]string, error) {
	load, _ := loaders.LoadOrStore(filename, fileLoader(sync.OnceValues(func() (map[string]string, error) {
		raw, err := files.ReadFile(filename)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read prompt file %s", filename)
		}
		var out map[string]string
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, eris.Wrapf(err, "failed to parse prompt file %s", filename)
		}
		return out, nil
	})))
	return load.(fileLoader)()
}

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	tmpl, err := templates(filename)
	if err != nil {
		return "", err
	}
	s, ok := tmpl[key]
	if !ok {
		return "", eris.Errorf("prompt key %q not found in %s", key, filename)
	}
	return s, nil
}

// MustGet is Get for templates that ship with the binary. It panics on a missing prompt.
func MustGet(filename, key string) string {
	s, err := Get(filename, key)
	if err != nil {
		panic(err)
	}
	return s
}

// Format substitutes {{.Name}} placeholders present in data and leaves the rest untouched.
func Format(template string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
}

// Placeholders lists the distinct placeholder names in template, in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render loads a template and fills it. Any placeholder missing from data is an error,
// so a prompt never reaches the model with a literal {{.Name}} in it.
func Render(filename, key string, data map[string]string) (string, error) {
	tmpl, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(tmpl) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", eris.Errorf("prompt %s/%s: no value for %s", filename, key, strings.Join(missing, ", "))
	}
	return Format(tmpl, data), nil
}

// MustRender is Render for the built-in call sites, whose data maps are fixed at compile time.
func MustRender(filename, key string, data map[string]string) string {
	s, err := Render(filename, key, data)
	if err != nil {
		panic(err)
	}
	return s
}

// List returns the sorted template keys in filename.
func List(filename string) ([]string, error) {
	tmpl, err := templates(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(tmpl))
	for k := range tmpl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
