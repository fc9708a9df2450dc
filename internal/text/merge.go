package text

// MergeChange combines two sequential changes into one, preserving order.
// Used when several edits inside one logical transaction must be reported
// to observers as a single change set. Pure and associative.
func MergeChange(a, b []ChangePart) []ChangePart {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]ChangePart, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

// MergePatch combines two sequential patches into one for batched
// broadcast. Pure and associative.
func MergePatch(a, b []PatchPart) []PatchPart {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]PatchPart, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
