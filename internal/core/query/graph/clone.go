package graph

// Clone returns a deep copy of the graph. Permission and other annotation
// layers operate on copies so a shared sub-graph is never mutated in place.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Collection: g.Collection,
		Filter:     cloneTree(g.Filter),
	}
	if g.Fields != nil {
		out.Fields = make([]FieldNode, len(g.Fields))
		for i, f := range g.Fields {
			out.Fields[i] = cloneField(f)
		}
	}
	if g.Sort != nil {
		out.Sort = make([]Sort, len(g.Sort))
		for i, s := range g.Sort {
			out.Sort[i] = Sort{Path: append([]string(nil), s.Path...), Desc: s.Desc}
		}
	}
	if g.Limit != nil {
		v := *g.Limit
		out.Limit = &v
	}
	if g.Offset != nil {
		v := *g.Offset
		out.Offset = &v
	}
	return out
}

// WithFilter returns a copy of the graph with extra restricting the existing
// filter (combined with And). A nil extra returns a plain copy.
func (g *Graph) WithFilter(extra ConditionTree) *Graph {
	out := g.Clone()
	switch {
	case extra == nil:
	case out.Filter == nil:
		out.Filter = cloneTree(extra)
	default:
		out.Filter = Logical{Op: And, Children: []ConditionTree{out.Filter, cloneTree(extra)}}
	}
	return out
}

func cloneField(f FieldNode) FieldNode {
	switch n := f.(type) {
	case RelationOne:
		fields := make([]FieldNode, len(n.Fields))
		for i, c := range n.Fields {
			fields[i] = cloneField(c)
		}
		n.Fields = fields
		return n
	case RelationMany:
		n.Query = n.Query.Clone()
		return n
	default:
		// Primitive and Function are value types without references.
		return f
	}
}

func cloneTree(t ConditionTree) ConditionTree {
	switch n := t.(type) {
	case Logical:
		children := make([]ConditionTree, len(n.Children))
		for i, c := range n.Children {
			children[i] = cloneTree(c)
		}
		return Logical{Op: n.Op, Children: children}
	case Condition:
		n.Target.Path = append([]string(nil), n.Target.Path...)
		if vs, ok := n.Value.([]any); ok {
			n.Value = append([]any(nil), vs...)
		}
		return n
	default:
		return t
	}
}
