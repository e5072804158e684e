// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package compiler

import (
	"slices"

	"github.com/agext/levenshtein"

	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

type scopeKind uint8

const (
	scopePackage scopeKind = iota
	scopeTypeDecl
	scopeCase
	scopeProtocol
)

// nameClass partitions a scope. Type-level names (types, protocols, type
// parameters) never collide with member names (fields, cases, versions).
type nameClass uint8

const (
	classType nameClass = iota
	classMember
	classImport
)

type scopeKey struct {
	class nameClass
	name  string
}

type scope struct {
	kind    scopeKind
	entries map[scopeKey]Binding
}

type scopeGuard struct {
	c     *compiler
	depth int
}

// openScope pushes a new scope. The returned guard must be closed, in
// LIFO order, with `defer guard.close()`.
func (c *compiler) openScope(kind scopeKind) *scopeGuard {
	c.scopes = append(c.scopes, &scope{
		kind:    kind,
		entries: make(map[scopeKey]Binding),
	})
	return &scopeGuard{c: c, depth: len(c.scopes)}
}

func (g *scopeGuard) close() {
	if len(g.c.scopes) != g.depth {
		panic("compiler: scopes closed out of order")
	}
	g.c.scopes = g.c.scopes[:g.depth-1]
}

func (c *compiler) currentScope() *scope {
	return c.scopes[len(c.scopes)-1]
}

// register adds a name to the innermost scope, reporting a NameConflict
// if the scope already contains it.
func (c *compiler) register(class nameClass, what string, name *syntax.Name, binding Binding) bool {
	key := scopeKey{class, name.Get()}
	current := c.currentScope()
	if prior, exists := current.entries[key]; exists {
		c.err(errNameConflict(what, name, prior.Pos()))
		return false
	}
	current.entries[key] = binding
	c.bindings.set(name.ID(), binding)
	return true
}

// lookup resolves a name innermost-first.
func (c *compiler) lookup(class nameClass, name string) (Binding, bool) {
	key := scopeKey{class, name}
	for ii := len(c.scopes) - 1; ii >= 0; ii-- {
		if binding, ok := c.scopes[ii].entries[key]; ok {
			return binding, true
		}
	}
	return nil, false
}

// lookupLocal resolves a name in the innermost scope only.
func (c *compiler) lookupLocal(class nameClass, name string) (Binding, bool) {
	binding, ok := c.currentScope().entries[scopeKey{class, name}]
	return binding, ok
}

func (c *compiler) visibleNames(class nameClass, localOnly bool) []string {
	var out []string
	for ii := len(c.scopes) - 1; ii >= 0; ii-- {
		for key := range c.scopes[ii].entries {
			if key.class == class {
				out = append(out, key.name)
			}
		}
		if localOnly {
			break
		}
	}
	slices.Sort(out)
	return out
}

const maxSuggestionDistance = 2

// suggest returns the closest candidate to name, or "" if none is close.
func suggest(name string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		distance := levenshtein.Distance(name, candidate, nil)
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}
