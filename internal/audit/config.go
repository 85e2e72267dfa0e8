// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

// Config is a declarative audit attachment: the ordered list of handler
// names to notify around an invocation. A Config can be attached at type
// or method granularity; a type-level Config is a fallback that never
// combines with a method-level one.
type Config struct {
	Handlers []string
}

// empty reports whether the config carries no handler names. A nil Config
// and a Config with an empty list behave identically during resolution.
func (c *Config) empty() bool {
	return c == nil || len(c.Handlers) == 0
}

// Site describes one intercepted call site: the runtime declaring type,
// the most specific method being invoked, and the configuration attached
// at each granularity.
type Site struct {
	Type   string
	Method string

	// MethodConfig is the attachment on the method itself, nil if absent.
	MethodConfig *Config
	// TypeConfig is the attachment on the declaring type, nil if absent.
	TypeConfig *Config
}

// Key renders the call site as "Type#Method".
func (s Site) Key() string {
	return s.Type + "#" + s.Method
}
