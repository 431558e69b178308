package templating

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// placeholderPattern matches ${path} and its escaped form \${path}.
var placeholderPattern = regexp.MustCompile(`(\\)?\$\{([A-Za-z0-9.\s]+)\}`)

// Interpolate replaces every ${path} placeholder in s with the stringified
// resolution of path. An escaped placeholder \${path} is emitted without
// the backslash and never resolved.
//
// All placeholders are resolved, concurrently, before the first
// substitution; the substituted text is not scanned again. updated reports
// whether s contained any placeholder at all, so callers can skip writing
// back unchanged text.
func Interpolate(ctx context.Context, s string, scope *Scope) (result string, updated bool, err error) {
	return interpolate(ctx, s, scope, 0)
}

// interpolate is Interpolate with a bound on concurrent resolutions
// (0 = unbounded).
func interpolate(ctx context.Context, s string, scope *Scope, limit int) (string, bool, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, false, nil
	}

	replacements := make([]string, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, m := range matches {
		if m[2] >= 0 {
			// escaped: drop the backslash, keep the rest verbatim
			replacements[i] = s[m[0]+1 : m[1]]
			continue
		}

		expression := strings.TrimSpace(s[m[4]:m[5]])
		g.Go(func() error {
			value, err := Resolve(gctx, expression, scope)
			if err != nil {
				return err
			}
			replacements[i] = Stringify(value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", false, err
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for i, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteString(replacements[i])
		last = m[1]
	}
	b.WriteString(s[last:])

	return b.String(), true, nil
}
