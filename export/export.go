// Package export renders a finalized schema as a portable OpenAPI schema
// document. The rendering is pure; given a valid input it cannot fail.
package export

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fieldprint/fieldprint/infer"
)

// node rebuilds the record structure from the flat path map. A node may
// carry a field schema, object children, an array element, or several of
// those at once when a path held mixed types.
type node struct {
	field    *infer.FieldSchema
	children map[string]*node
	elem     *node
}

func (n *node) child(name string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[name]
	if !ok {
		c = &node{}
		n.children[name] = c
	}
	return c
}

func (n *node) element() *node {
	if n.elem == nil {
		n.elem = &node{}
	}
	return n.elem
}

func buildTree(s *infer.InferredSchema) *node {
	root := &node{}
	for path, f := range s.Fields {
		cur := root
		for _, seg := range strings.Split(path, ".") {
			if seg == "[]" {
				cur = cur.element()
			} else {
				cur = cur.child(seg)
			}
		}
		cur.field = f
	}
	return root
}

// Schema renders the inferred schema as an OpenAPI schema document rooted
// at the record object.
func Schema(s *infer.InferredSchema) *openapi3.Schema {
	root := buildTree(s)
	return renderObject(root)
}

func render(n *node) *openapi3.Schema {
	if n == nil {
		return openapi3.NewSchema()
	}
	if len(n.children) > 0 {
		obj := renderObject(n)
		if n.field != nil {
			obj.Nullable = n.field.Nullable
			if n.field.Type == infer.KindMixed {
				return renderMixedObject(n, obj)
			}
		}
		return obj
	}
	if n.elem != nil || (n.field != nil && n.field.Type == infer.KindArray) {
		return renderArray(n)
	}
	return renderLeaf(n.field)
}

func renderObject(n *node) *openapi3.Schema {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(openapi3.Schemas, len(names))
	var required []string
	for _, name := range names {
		c := n.children[name]
		props[name] = render(c).NewRef()
		if c.field != nil && c.field.Required {
			required = append(required, name)
		}
	}

	return &openapi3.Schema{
		Type:       openapi3.TypeObject,
		Properties: props,
		Required:   required,
	}
}

func renderArray(n *node) *openapi3.Schema {
	arr := &openapi3.Schema{
		Type:  openapi3.TypeArray,
		Items: render(n.elem).NewRef(),
	}
	if n.field != nil {
		arr.Nullable = n.field.Nullable
	}
	return arr
}

// renderMixedObject handles a path that was sometimes an object and
// sometimes something simpler: a oneOf over the object shape and the
// other constituent types.
func renderMixedObject(n *node, obj *openapi3.Schema) *openapi3.Schema {
	oneOf := openapi3.SchemaRefs{obj.NewRef()}
	for _, k := range n.field.Mixed {
		if k == infer.KindObject {
			continue
		}
		if k == infer.KindArray && n.elem != nil {
			oneOf = append(oneOf, renderArray(n).NewRef())
			continue
		}
		oneOf = append(oneOf, simpleSchema(k, n.field).NewRef())
	}
	return &openapi3.Schema{OneOf: oneOf, Nullable: n.field.Nullable}
}

func renderLeaf(f *infer.FieldSchema) *openapi3.Schema {
	if f == nil {
		return openapi3.NewSchema()
	}
	if f.Type == infer.KindMixed {
		oneOf := make(openapi3.SchemaRefs, 0, len(f.Mixed))
		for _, k := range f.Mixed {
			oneOf = append(oneOf, simpleSchema(k, f).NewRef())
		}
		return &openapi3.Schema{OneOf: oneOf, Nullable: f.Nullable}
	}
	return simpleSchema(f.Type, f)
}

func simpleSchema(k infer.Kind, f *infer.FieldSchema) *openapi3.Schema {
	s := &openapi3.Schema{Nullable: f.Nullable}

	switch k {
	case infer.KindNull:
		s.Nullable = true
	case infer.KindBool:
		s.Type = openapi3.TypeBoolean
	case infer.KindInteger:
		s.Type = openapi3.TypeInteger
		applyNumericBounds(s, f)
	case infer.KindNumber:
		s.Type = openapi3.TypeNumber
		applyNumericBounds(s, f)
	case infer.KindString:
		s.Type = openapi3.TypeString
		s.Format = f.Format
	case infer.KindArray:
		s.Type = openapi3.TypeArray
		s.Items = openapi3.NewSchema().NewRef()
	case infer.KindObject:
		s.Type = openapi3.TypeObject
	}

	if len(f.Examples) > 0 && k != infer.KindArray && k != infer.KindObject {
		s.Example = f.Examples[0]
	}
	return s
}

func applyNumericBounds(s *openapi3.Schema, f *infer.FieldSchema) {
	if f.Numeric == nil || f.Numeric.Count == 0 {
		return
	}
	lo, hi := f.Numeric.Min, f.Numeric.Max
	s.Min = &lo
	s.Max = &hi
}
