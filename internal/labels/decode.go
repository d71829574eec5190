// Package labels decodes composite per-point labels and maps them to colors.
//
// A composite label packs a semantic class and an instance id in a single integer:
// label = semantic*1000 + instance. The semantic part is recovered with floor division,
// so the instance part is always in [0, 1000).
package labels

// InstanceBase is the multiplier applied to the semantic id in a composite label
const InstanceBase = 1000

// DecodeOne splits a composite label in its semantic and instance ids
func DecodeOne(label int32) (semantic int32, instance int32) {
	semantic = floorDiv(label, InstanceBase)
	instance = label - semantic*InstanceBase
	return semantic, instance
}

// Decode splits every composite label. No validation is done on the semantic ids,
// callers mask them with ValidMask before looking up colors.
func Decode(composite []int32) (semantic []int32, instance []int32) {
	semantic = make([]int32, len(composite))
	instance = make([]int32, len(composite))
	for i, label := range composite {
		semantic[i], instance[i] = DecodeOne(label)
	}
	return semantic, instance
}

// Encode builds a composite label
func Encode(semantic, instance int32) int32 {
	return semantic*InstanceBase + instance
}

// ValidSemantic tells whether a semantic id maps to a known class
func ValidSemantic(id int32) bool {
	return id >= 0 && id < NumClasses
}

// ValidMask returns, for each semantic id, whether it is a valid class
func ValidMask(semantic []int32) []bool {
	mask := make([]bool, len(semantic))
	for i, id := range semantic {
		mask[i] = ValidSemantic(id)
	}
	return mask
}

// Go integer division truncates toward zero
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
