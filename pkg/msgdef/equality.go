package msgdef

// Equal reports whether a and b are structurally identical: same name,
// same fields in the same order, with every attribute matching.
func Equal(a, b *MessageDefinition) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Definitions) != len(b.Definitions) {
		return false
	}
	for i := range a.Definitions {
		if !fieldEqual(a.Definitions[i], b.Definitions[i]) {
			return false
		}
	}
	return true
}

// EqualAll reports whether two flattened schema lists are structurally
// identical, in the same order.
func EqualAll(a, b []*MessageDefinition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func fieldEqual(a, b *MessageDefinitionField) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Name != b.Name || a.IsComplex != b.IsComplex ||
		a.EnumType != b.EnumType || a.IsArray != b.IsArray ||
		a.IsConstant != b.IsConstant || a.ValueText != b.ValueText {
		return false
	}
	if !intPtrEqual(a.ArrayLength, b.ArrayLength) ||
		!intPtrEqual(a.ArrayUpperBound, b.ArrayUpperBound) ||
		!intPtrEqual(a.UpperBound, b.UpperBound) {
		return false
	}
	if !a.Value.Equal(b.Value) {
		return false
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
