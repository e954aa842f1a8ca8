// Package transform provides reusable field transformers and a registry of
// named transformers used by declarative schema bundles.
//
// Every transformer passes nil and non-string values through unchanged.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reoring/skeleton"
)

// ErrUnknown is returned by Lookup for names that are not registered.
var ErrUnknown = errors.New("transform: unknown transformer")

// Trim removes leading and trailing white space.
func Trim() skeleton.Transformer {
	return onString(func(s string) (any, error) { return strings.TrimSpace(s), nil })
}

// Lower folds text to lower case.
func Lower() skeleton.Transformer {
	return onString(func(s string) (any, error) { return cases.Lower(language.Und).String(s), nil })
}

// Upper folds text to upper case.
func Upper() skeleton.Transformer {
	return onString(func(s string) (any, error) { return cases.Upper(language.Und).String(s), nil })
}

// Title upper-cases the first letter of each word.
func Title() skeleton.Transformer {
	return onString(func(s string) (any, error) { return cases.Title(language.Und).String(s), nil })
}

// EmptyToNull turns empty or blank strings into nil, which then passes
// conversion untouched.
func EmptyToNull() skeleton.Transformer {
	return onString(func(s string) (any, error) {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return s, nil
	})
}

// Split cuts text around sep into a list of trimmed parts. Empty text yields
// an empty list.
func Split(sep string) skeleton.Transformer {
	return onString(func(s string) (any, error) {
		if sep == "" {
			return nil, fmt.Errorf("transform: empty separator")
		}
		out := []any{}
		if strings.TrimSpace(s) == "" {
			return out, nil
		}
		for _, p := range strings.Split(s, sep) {
			out = append(out, strings.TrimSpace(p))
		}
		return out, nil
	})
}

// Chain applies fns in order. A nil result stops the chain.
func Chain(fns ...skeleton.Transformer) skeleton.Transformer {
	return func(v any) (any, error) {
		var err error
		for _, fn := range fns {
			if v == nil {
				return nil, nil
			}
			if v, err = fn(v); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
}

func onString(fn func(string) (any, error)) skeleton.Transformer {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return fn(s)
	}
}

// Factory builds a transformer from the argument following ':' in a
// registered name ("split:;" passes ";"). arg is "" when none is given.
type Factory func(arg string) (skeleton.Transformer, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{m: map[string]Factory{
	"trim":          noArg(Trim),
	"lower":         noArg(Lower),
	"upper":         noArg(Upper),
	"title":         noArg(Title),
	"empty_to_null": noArg(EmptyToNull),
	"split": func(arg string) (skeleton.Transformer, error) {
		if arg == "" {
			arg = ","
		}
		return Split(arg), nil
	},
}}

func noArg(fn func() skeleton.Transformer) Factory {
	return func(arg string) (skeleton.Transformer, error) {
		if arg != "" {
			return nil, fmt.Errorf("transform: unexpected argument %q", arg)
		}
		return fn(), nil
	}
}

// Register adds or replaces a named transformer.
func Register(name string, f Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.m[name] = f
}

// Names lists registered transformer names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]string, 0, len(registry.m))
	for k := range registry.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a reference of the form "name" or "name:arg".
func Lookup(ref string) (skeleton.Transformer, error) {
	name, arg, _ := strings.Cut(ref, ":")
	registry.mu.RLock()
	f, ok := registry.m[strings.TrimSpace(name)]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return f(arg)
}

// LookupChain resolves every reference and chains the results.
func LookupChain(refs []string) (skeleton.Transformer, error) {
	fns := make([]skeleton.Transformer, 0, len(refs))
	for _, r := range refs {
		fn, err := Lookup(r)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	if len(fns) == 1 {
		return fns[0], nil
	}
	return Chain(fns...), nil
}
