package scriptgraph

import "fmt"

// TypeRef identifies a named type in the host's type registry.
// Name is the short, human-legible name; Path is the registry path
// ("/types/Vector"). Either may stand alone: host reflection sometimes
// surfaces only one of the two.
type TypeRef struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// IsZero reports whether the reference identifies nothing
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.Path == ""
}

// String returns the most specific identity available
func (t TypeRef) String() string {
	if t.Path != "" {
		return t.Path
	}
	return t.Name
}

// Display returns the human-legible name, falling back to the path
func (t TypeRef) Display() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Path
}

// Equal reports whether two references identify the same type.
// Paths win when both sides carry one; otherwise names are compared.
func (t TypeRef) Equal(other TypeRef) bool {
	if t.Path != "" && other.Path != "" {
		return t.Path == other.Path
	}
	return t.Name != "" && t.Name == other.Name
}

// Pin type categories. Object and struct pins additionally carry a
// TypeRef naming the concrete type; wildcard pins adopt the type of
// whatever they are first wired to.
const (
	PinExec     = "exec"
	PinBool     = "bool"
	PinInt      = "int"
	PinFloat    = "float"
	PinString   = "string"
	PinObject   = "object"
	PinStruct   = "struct"
	PinWildcard = "wildcard"
)

// PinType describes the logical type of a port
type PinType struct {
	Category    string  `json:"category"`
	SubType     TypeRef `json:"sub_type,omitzero"`
	IsArray     bool    `json:"is_array,omitempty"`
	IsReference bool    `json:"is_reference,omitempty"`
}

// ExecType returns the execution pin type
func ExecType() PinType {
	return PinType{Category: PinExec}
}

// WildcardType returns the untyped pass-through pin type
func WildcardType() PinType {
	return PinType{Category: PinWildcard}
}

// ObjectType returns an object pin of the given type
func ObjectType(ref TypeRef) PinType {
	return PinType{Category: PinObject, SubType: ref}
}

// StructType returns a struct pin of the given type
func StructType(ref TypeRef) PinType {
	return PinType{Category: PinStruct, SubType: ref}
}

// String renders the type the way the host's tooltip would
func (pt PinType) String() string {
	name := pt.Category
	if !pt.SubType.IsZero() {
		name = fmt.Sprintf("%s<%s>", pt.Category, pt.SubType.Display())
	}
	if pt.IsArray {
		name = "array<" + name + ">"
	}
	return name
}

// Compatible reports whether an output of type pt may be wired to an
// input of type other. Wildcards accept anything; exec only wires to
// exec; object pins rely on the host's own validation for hierarchy, so
// any object-to-object wire is accepted here.
func (pt PinType) Compatible(other PinType) bool {
	if pt.Category == PinWildcard || other.Category == PinWildcard {
		return true
	}
	if pt.Category != other.Category {
		return false
	}
	if pt.IsArray != other.IsArray {
		return false
	}
	return true
}

// Position represents canvas coordinates for a node
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Direction for port data flow
type Direction string

// Direction constants for port data flow
const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)
