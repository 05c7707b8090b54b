package catalog

import "github.com/c360/scriptbridge/scriptgraph"

// Context is the editing context a candidate entry is judged against
type Context struct {
	Document *scriptgraph.Document
	Graph    *scriptgraph.Graph
}

// ContextFilter decides whether a candidate entry is legal to place in
// the given editing context. This is the same judgement an interactive
// node picker applies. The host's real rule is internal to the host;
// embedders inject their own predicate and this package only supplies a
// conservative default.
type ContextFilter func(e Entry, ctx *Context) bool

// DefaultContextFilter returns a predicate over the given type system:
// a member entry is legal when it is static or pure (callable from
// anywhere), when it has no owning type, or when the document's
// generated type is-a the owning type. Cast and generic entries are
// always legal.
func DefaultContextFilter(ts *TypeSystem) ContextFilter {
	return func(e Entry, ctx *Context) bool {
		spec := e.Spec()
		var owner scriptgraph.TypeRef

		switch spec.Kind {
		case scriptgraph.KindFunctionCall:
			member := spec.Function
			if member.IsStatic || member.IsPure {
				return true
			}
			owner = member.Owner
			if owner.IsZero() {
				owner = e.OuterScope()
			}
		case scriptgraph.KindVariableGet, scriptgraph.KindVariableSet:
			owner = spec.Variable.Owner
		default:
			return true
		}

		if owner.IsZero() || ctx == nil || ctx.Document == nil {
			return true
		}
		docType := ctx.Document.GeneratedType
		return docType.Equal(owner) || ts.IsA(docType, owner)
	}
}
