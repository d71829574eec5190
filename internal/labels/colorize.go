package labels

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ColorizeSemantic returns one color per point. Points with an invalid semantic id are Unannotated.
func ColorizeSemantic(semantic []int32) []RGB {
	colors := make([]RGB, len(semantic))
	for i, id := range semantic {
		colors[i] = SemanticColor(id)
	}
	return colors
}

type backgroundKind int

const (
	backgroundNone backgroundKind = iota
	backgroundMax
	backgroundValue
)

// Background selects which instance id denotes "no instance". Points with that id are not colored.
type Background struct {
	kind  backgroundKind
	value int32
}

var (
	// BackgroundNone colors every instance id
	BackgroundNone = Background{kind: backgroundNone}
	// BackgroundMax treats the largest instance id present as background
	BackgroundMax = Background{kind: backgroundMax}
)

// BackgroundValue treats the given instance id as background
func BackgroundValue(id int32) Background {
	return Background{kind: backgroundValue, value: id}
}

func (b Background) String() string {
	switch b.kind {
	case backgroundMax:
		return "max"
	case backgroundValue:
		return strconv.Itoa(int(b.value))
	}
	return "none"
}

// ParseBackground parses "none", "max" or an instance id
func ParseBackground(value string) (Background, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch normalizedValue {
	case "", "max":
		return BackgroundMax, nil
	case "none":
		return BackgroundNone, nil
	}
	id, err := strconv.ParseInt(normalizedValue, 10, 32)
	if err != nil {
		return Background{}, fmt.Errorf("invalid background %q: must be none, max or an instance id", value)
	}
	return BackgroundValue(int32(id)), nil
}

// MarshalText implements encoding.TextMarshaler
func (b Background) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *Background) UnmarshalText(text []byte) error {
	parsed, err := ParseBackground(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// resolve returns the background id for the given sorted distinct ids
func (b Background) resolve(distinct []int32) (int32, bool) {
	switch b.kind {
	case backgroundMax:
		if len(distinct) == 0 {
			return 0, false
		}
		return distinct[len(distinct)-1], true
	case backgroundValue:
		return b.value, true
	}
	return 0, false
}

// DistinctInstances returns the sorted distinct instance ids
func DistinctInstances(instance []int32) []int32 {
	seen := make(map[int32]struct{})
	distinct := make([]int32, 0)
	for _, id := range instance {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			distinct = append(distinct, id)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	return distinct
}

// ColorizeInstances returns one color per point. Every point sharing an instance id gets
// InstanceColor(id), points with the background id stay Unannotated.
func ColorizeInstances(instance []int32, background Background) []RGB {
	colors := make([]RGB, len(instance))
	bgID, hasBackground := background.resolve(DistinctInstances(instance))
	for i, id := range instance {
		if hasBackground && id == bgID {
			continue
		}
		colors[i] = InstanceColor(id)
	}
	return colors
}

// Colorize decodes the composite labels and returns the semantic and instance colors
func Colorize(composite []int32, background Background) (semanticColors []RGB, instanceColors []RGB) {
	semantic, instance := Decode(composite)
	return ColorizeSemantic(semantic), ColorizeInstances(instance, background)
}
