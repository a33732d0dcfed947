package scan

import (
	"fmt"
	"strings"
)

// ParseTypeDescriptor parses a canonical type descriptor string into a
// TypeSignature. Supported forms:
//
//	"I"                     base type
//	"Ljava/lang/String;"    class reference
//	"[[I"                   array (any number of leading brackets)
//
// The returned signature is unattached; use Result.ParseTypeDescriptor to
// parse and bind in one step.
func ParseTypeDescriptor(desc string) (TypeSignature, error) {
	if desc == "" {
		return nil, fmt.Errorf("empty type descriptor")
	}

	numDims := 0
	for numDims < len(desc) && desc[numDims] == '[' {
		numDims++
	}
	rest := desc[numDims:]
	if rest == "" {
		return nil, fmt.Errorf("type descriptor %q has no element type", desc)
	}

	elem, err := parseElementDescriptor(rest)
	if err != nil {
		return nil, fmt.Errorf("type descriptor %q: %w", desc, err)
	}

	if numDims == 0 {
		return elem, nil
	}
	return NewArrayTypeSignature(elem, numDims)
}

// parseElementDescriptor parses the non-array part of a descriptor.
func parseElementDescriptor(desc string) (TypeSignature, error) {
	if len(desc) == 1 {
		name, ok := baseTypeNames[desc[0]]
		if !ok {
			return nil, fmt.Errorf("unknown base type descriptor %q", desc)
		}
		return &BaseTypeSignature{name: name, descriptor: desc[0]}, nil
	}

	if desc[0] != 'L' {
		return nil, fmt.Errorf("expected 'L' to open a class reference, got %q", desc[0])
	}
	if desc[len(desc)-1] != ';' {
		return nil, fmt.Errorf("unterminated class reference")
	}
	name := desc[1 : len(desc)-1]
	if name == "" {
		return nil, fmt.Errorf("class reference has an empty name")
	}
	if strings.ContainsAny(name, ";[") {
		return nil, fmt.Errorf("invalid character in class name %q", name)
	}
	return &ClassRefTypeSignature{className: strings.ReplaceAll(name, "/", ".")}, nil
}
