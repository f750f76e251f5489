// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package xmltree is a small in-memory element tree for assembling XML documents
// before they're encoded.
package xmltree

// Attr is an attribute of an element. Prefixed names such as "xmlns:xsi" are written as-is.
type Attr struct {
	Name  string
	Value string
}

// Node is an element with optional text content and ordered children.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			return n.Attrs[i].Value, true
		}
	}
	return "", false
}

// Find follows path through the first matching child at each level and returns the
// element it ends on, or nil.
func (n *Node) Find(path ...string) *Node {
	current := n
	for _, name := range path {
		if current == nil {
			return nil
		}
		var next *Node
		for _, child := range current.Children {
			if child.Name == name {
				next = child
				break
			}
		}
		current = next
	}
	return current
}

// FindAll returns every direct child with the given name.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// TextOf returns the text of the element at path, or "" when it doesn't exist.
func (n *Node) TextOf(path ...string) string {
	if found := n.Find(path...); found != nil {
		return found.Text
	}
	return ""
}

// Names returns the names of n's direct children in order.
func (n *Node) Names() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.Children))
	for i := range n.Children {
		out[i] = n.Children[i].Name
	}
	return out
}
