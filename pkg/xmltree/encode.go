// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

var errNilNode = errors.New("xmltree: nil node")

// Encode writes n and its descendants to w. Children are indented with indent
// unless it's empty.
func Encode(w io.Writer, n *Node, indent string) error {
	if n == nil {
		return errNilNode
	}
	enc := xml.NewEncoder(w)
	if indent != "" {
		enc.Indent("", indent)
	}
	if err := encodeNode(enc, n); err != nil {
		return err
	}
	return enc.Flush()
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for i := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: n.Attrs[i].Name},
			Value: n.Attrs[i].Value,
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := encodeNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Document encodes n with a leading XML declaration.
func Document(n *Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := Encode(&buf, n, indent); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
