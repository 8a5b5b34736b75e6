package vector

import (
	"fmt"
	"maps"
	"slices"
)

// Where is a set of metadata equalities. A document matches when every key is
// present in its metadata with an equal value. An empty Where matches all.
type Where map[string]any

// Matches reports whether metadata satisfies every equality in w.
func (w Where) Matches(metadata map[string]any) bool {
	for k, want := range w {
		got, ok := metadata[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Keys returns the filter keys in sorted order so drivers build stable queries.
func (w Where) Keys() []string {
	return slices.Sorted(maps.Keys(w))
}

func valuesEqual(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af == bf
	}
	if aNum != bNum {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
