// Package resolver maps client task names to worker job targets.
package resolver

import (
	"fmt"
	"slices"
	"strings"
)

// Resolver turns a task name into a job target. It reports false when it
// does not know the name. Resolvers are compared by identity, so
// implementations must be comparable; pointer types are.
type Resolver interface {
	Resolve(taskName string) (target string, ok bool)
}

type funcResolver struct {
	fn func(string) (string, bool)
}

// Func wraps fn in a new Resolver. Each call returns a distinct resolver,
// even for the same fn.
func Func(fn func(taskName string) (string, bool)) Resolver {
	return &funcResolver{fn: fn}
}

func (f *funcResolver) Resolve(taskName string) (string, bool) { return f.fn(taskName) }

func (f *funcResolver) String() string { return "func" }

type prefixResolver struct {
	prefix string
}

// Prefix resolves every non-empty name to prefix+name, so "add" becomes
// "tasks.add" for prefix "tasks.".
func Prefix(prefix string) Resolver {
	return &prefixResolver{prefix: prefix}
}

func (p *prefixResolver) Resolve(taskName string) (string, bool) {
	if taskName == "" {
		return "", false
	}
	return p.prefix + taskName, true
}

func (p *prefixResolver) String() string { return fmt.Sprintf("prefix(%q)", p.prefix) }

type allowResolver struct {
	prefix string
	names  []string
}

// Allow resolves only the listed names, prefixing them with prefix.
func Allow(prefix string, names ...string) Resolver {
	ns := slices.Clone(names)
	slices.Sort(ns)
	return &allowResolver{prefix: prefix, names: slices.Compact(ns)}
}

func (a *allowResolver) Resolve(taskName string) (string, bool) {
	if _, found := slices.BinarySearch(a.names, taskName); !found {
		return "", false
	}
	return a.prefix + taskName, true
}

func (a *allowResolver) String() string {
	return fmt.Sprintf("allow(%q, %s)", a.prefix, strings.Join(a.names, ","))
}
