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
	"cmp"
	"log/slog"
	"slices"

	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

// Gaps wider than this are summarised in one trailing error.
const maxGapErrors = 32

// versionMembers is the membership assigned to one protocol version.
type versionMembers struct {
	types   []Binding
	added   []Binding
	removed []Binding
}

type memberSet struct {
	keys  []string
	items map[string]Binding
}

func newMemberSet() *memberSet {
	return &memberSet{items: make(map[string]Binding)}
}

func (s *memberSet) clone() *memberSet {
	out := &memberSet{
		keys:  slices.Clone(s.keys),
		items: make(map[string]Binding, len(s.items)),
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	return out
}

func (s *memberSet) contains(key string) bool {
	_, ok := s.items[key]
	return ok
}

func (s *memberSet) add(key string, binding Binding) {
	s.keys = append(s.keys, key)
	s.items[key] = binding
}

func (s *memberSet) remove(key string) {
	delete(s.items, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
}

func (s *memberSet) bindings() []Binding {
	out := make([]Binding, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.items[key])
	}
	return out
}

// checkProtocol verifies the version history of one protocol: version
// numbers are contiguous, and each version's additions and removals are
// legal against the version below it.
func (c *compiler) checkProtocol(proto *syntax.Protocol) {
	versions := slices.Clone(proto.Versions())
	if len(versions) == 0 {
		return
	}
	slices.SortStableFunc(versions, func(a, b *syntax.Version) int {
		return cmp.Compare(a.Number(), b.Number())
	})
	c.checkContiguous(proto, versions)

	protoName := proto.Name().Get()
	prev := newMemberSet()
	for ii, version := range versions {
		first := ii == 0
		number := version.Number()
		assigned := &versionMembers{}

		if first && (version.RemovesAll() || len(version.TypesRemoved()) > 0) {
			c.err(errProtocolVersionFirstRemoval(version, protoName))
		}

		cur := prev.clone()
		if version.RemovesAll() && !first {
			for _, key := range prev.keys {
				assigned.removed = append(assigned.removed, prev.items[key])
			}
			cur = newMemberSet()
		}

		for _, ref := range version.TypesRemoved() {
			if first {
				break
			}
			binding := c.bindings.mustGet(ref)
			key := memberKey(binding, c.currentPackage())
			if !cur.contains(key) {
				c.err(errProtocolVersionNotPresent(ref, number))
				continue
			}
			cur.remove(key)
			assigned.removed = append(assigned.removed, binding)
		}

		for _, ref := range version.TypesAdded() {
			binding := c.bindings.mustGet(ref)
			c.checkMemberKind(ref, binding)
			key := memberKey(binding, c.currentPackage())
			if prev.contains(key) || cur.contains(key) {
				c.err(errProtocolVersionAlreadyPresent(ref, number))
				continue
			}
			cur.add(key, binding)
			assigned.added = append(assigned.added, binding)
		}

		if len(cur.keys) == 0 {
			c.err(errProtocolVersionBecameEmpty(version, protoName))
		}
		assigned.types = cur.bindings()
		c.members[version.ID()] = assigned
		c.log.Debug("protocol version membership",
			slog.String("protocol", protoName),
			slog.Uint64("version", number),
			slog.Int("types", len(assigned.types)))
		prev = cur
	}
}

func (c *compiler) checkContiguous(proto *syntax.Protocol, sorted []*syntax.Version) {
	reported := 0
	for ii := 1; ii < len(sorted); ii++ {
		low, high := sorted[ii-1].Number(), sorted[ii].Number()
		for missing := low + 1; missing < high; missing++ {
			if reported >= maxGapErrors {
				if reported == maxGapErrors {
					c.err(errProtocolVersionGapTruncated(proto, high-missing))
					reported++
				}
				break
			}
			c.err(errProtocolVersionGap(proto, missing))
			reported++
		}
	}
}

// checkMemberKind requires protocol members to be records or variants
// with no type parameters.
func (c *compiler) checkMemberKind(ref *syntax.TypeName, binding Binding) {
	kind := kindOf(binding)
	switch kind {
	case model.KindRecord, model.KindVariant:
		if arity := c.arity(binding); arity != 0 {
			c.err(errProtocolKindMismatch(ref, "a parameterized "+kind.String()))
		}
	case model.KindExternal:
		c.err(errProtocolKindMismatch(ref, "an external type"))
	case 0:
		c.err(errProtocolKindMismatch(ref, "a type parameter"))
	default:
		panic("unreachable")
	}
}
