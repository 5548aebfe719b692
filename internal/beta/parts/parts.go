// Package parts holds component fixtures for registry tests. A sibling
// package with the same name lives under internal/alpha.
package parts

// Anchor is a plain positional component.
type Anchor struct {
	X, Y float32
}
