// Package classnames builds utility class strings from conditional fragments and
// collapses conflicting utilities so the last one wins.
//
//	classnames.CN("flex p-2", classnames.If(dark, "bg-slate-900"), map[string]bool{"hidden": !open})
package classnames

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Join flattens fragments into a space-separated class string. Accepted
// fragments are string, []string, []any (nested), map[string]bool, numbers
// (non-zero, non-NaN values are stringified) and fmt.Stringer. bool, nil and any other
// value are ignored. Map keys are applied in sorted order.
func Join(fragments ...any) string {
	var b strings.Builder
	for _, f := range fragments {
		appendFragment(&b, f)
	}
	return b.String()
}

// If returns class when cond holds, otherwise the empty fragment.
func If(cond bool, class string) string {
	if cond {
		return class
	}
	return ""
}

func appendFragment(b *strings.Builder, fragment any) {
	switch v := fragment.(type) {
	case nil, bool:
	case string:
		appendClass(b, v)
	case []string:
		for _, s := range v {
			appendClass(b, s)
		}
	case []any:
		for _, item := range v {
			appendFragment(b, item)
		}
	case map[string]bool:
		keys := make([]string, 0, len(v))
		for k, on := range v {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendClass(b, k)
		}
	case int:
		appendInt(b, int64(v))
	case int8:
		appendInt(b, int64(v))
	case int16:
		appendInt(b, int64(v))
	case int32:
		appendInt(b, int64(v))
	case int64:
		appendInt(b, v)
	case uint:
		appendUint(b, uint64(v))
	case uint8:
		appendUint(b, uint64(v))
	case uint16:
		appendUint(b, uint64(v))
	case uint32:
		appendUint(b, uint64(v))
	case uint64:
		appendUint(b, v)
	case float32:
		appendFloat(b, float64(v), 32)
	case float64:
		appendFloat(b, v, 64)
	case fmt.Stringer:
		appendClass(b, v.String())
	}
}

func appendInt(b *strings.Builder, n int64) {
	if n == 0 {
		return
	}
	appendClass(b, strconv.FormatInt(n, 10))
}

func appendUint(b *strings.Builder, n uint64) {
	if n == 0 {
		return
	}
	appendClass(b, strconv.FormatUint(n, 10))
}

func appendFloat(b *strings.Builder, f float64, bits int) {
	if f == 0 || math.IsNaN(f) {
		return
	}
	appendClass(b, strconv.FormatFloat(f, 'f', -1, bits))
}

func appendClass(b *strings.Builder, class string) {
	class = strings.TrimSpace(class)
	if class == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(class)
}

// CN joins fragments and merges the result.
func CN(fragments ...any) string {
	return Merge(Join(fragments...))
}
