// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package xmltree

// Builder assembles a tree through nested scopes. An element opened by Element is
// closed when its function returns, even if it panics.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	document *Node
	stack    []*Node
}

func NewBuilder() *Builder {
	doc := &Node{}
	return &Builder{
		document: doc,
		stack:    []*Node{doc},
	}
}

func (b *Builder) current() *Node {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) open(name string, attrs []Attr) *Node {
	node := &Node{Name: name, Attrs: attrs}
	parent := b.current()
	parent.Children = append(parent.Children, node)
	return node
}

// Element appends an element to the current scope and runs fn with it as the new scope.
func (b *Builder) Element(name string, fn func(), attrs ...Attr) {
	node := b.open(name, attrs)
	b.stack = append(b.stack, node)
	defer func() {
		b.stack = b.stack[:len(b.stack)-1]
	}()
	if fn != nil {
		fn()
	}
}

// Text appends an element holding only text to the current scope.
func (b *Builder) Text(name, value string, attrs ...Attr) {
	node := b.open(name, attrs)
	node.Text = value
}

// Root returns the first top level element, or nil if nothing was built.
func (b *Builder) Root() *Node {
	if len(b.document.Children) == 0 {
		return nil
	}
	return b.document.Children[0]
}
