package templating

import (
	"context"
	"strings"
)

// Resolve evaluates a dotted path such as "user.address.city" against the
// scope.
//
// The walk stops early and returns nil as soon as an intermediate value is
// nil; an unresolvable path is not an error. When a segment resolves to a
// callable (see Func) it is invoked with the value it was found on as
// receiver and a snapshot of the scope, and the walk continues with its
// result. Exported methods that take no arguments are called the same way
// when no key or field of that name exists, so "link.Hostname" works on a
// *url.URL. Only errors returned by such calls, or a cancelled ctx, fail the
// resolution.
func Resolve(ctx context.Context, expression string, scope *Scope) (any, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}
	if scope == nil {
		scope = NewScope(nil)
	}

	var current any = scope
	for _, part := range strings.Split(expression, ".") {
		if current == nil {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		receiver := current
		current = lookup(current, strings.TrimSpace(part))

		if isCallable(current) {
			result, err := invoke(ctx, current, Call{
				Receiver: receiver,
				Scope:    scope.Snapshot(),
			})
			if err != nil {
				return nil, NewExpressionError(expression, err)
			}
			current = result
		}
	}

	return current, nil
}
