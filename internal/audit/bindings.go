// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"strings"

	"github.com/gobwas/glob"
)

// Attachment binds a target to an ordered list of handler names. The
// target is either a type name ("UserService") or a method key
// ("UserService#Create") and may contain glob metacharacters so that one
// attachment can cover a family of methods ("UserService#Create*").
type Attachment struct {
	Target   string
	Handlers []string
}

// compiledAttachment holds a pattern target and its compiled glob.
type compiledAttachment struct {
	pattern string
	g       glob.Glob
	cfg     Config
}

// Bindings is a read-only view of the declarative attachments, the
// engine-side analog of the host's reflection/metadata facility. Exact
// targets take precedence over patterns; patterns match in declaration
// order. Built once at startup, safe for concurrent use afterwards.
type Bindings struct {
	types          map[string]Config
	methods        map[string]Config
	typePatterns   []compiledAttachment
	methodPatterns []compiledAttachment
}

// NewBindings compiles the given attachments. Targets containing a "#"
// bind at method granularity, all others at type granularity. Returns an
// error with code BAD_ATTACHMENT if a pattern does not compile.
func NewBindings(attachments []Attachment) (*Bindings, error) {
	b := &Bindings{
		types:   make(map[string]Config),
		methods: make(map[string]Config),
	}
	for _, a := range attachments {
		cfg := Config{Handlers: append([]string(nil), a.Handlers...)}
		isMethod := strings.Contains(a.Target, "#")

		if !strings.ContainsAny(a.Target, "*?[{") {
			if isMethod {
				b.methods[a.Target] = cfg
			} else {
				b.types[a.Target] = cfg
			}
			continue
		}

		g, err := glob.Compile(a.Target, '#')
		if err != nil {
			return nil, ErrBadAttachment(a.Target, err)
		}
		compiled := compiledAttachment{pattern: a.Target, g: g, cfg: cfg}
		if isMethod {
			b.methodPatterns = append(b.methodPatterns, compiled)
		} else {
			b.typePatterns = append(b.typePatterns, compiled)
		}
	}
	return b, nil
}

// Site builds the call-site descriptor for a type/method pair, attaching
// the configs bound at each granularity.
func (b *Bindings) Site(typeName, method string) Site {
	site := Site{Type: typeName, Method: method}
	key := typeName + "#" + method

	if cfg, ok := b.methods[key]; ok {
		site.MethodConfig = &cfg
	} else {
		for i := range b.methodPatterns {
			if b.methodPatterns[i].g.Match(key) {
				cfg := b.methodPatterns[i].cfg
				site.MethodConfig = &cfg
				break
			}
		}
	}

	if cfg, ok := b.types[typeName]; ok {
		site.TypeConfig = &cfg
	} else {
		for i := range b.typePatterns {
			if b.typePatterns[i].g.Match(typeName) {
				cfg := b.typePatterns[i].cfg
				site.TypeConfig = &cfg
				break
			}
		}
	}

	return site
}
