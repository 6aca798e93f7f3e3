package classnames

import (
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Merge resolves conflicting Tailwind utilities so the later class wins, using
// tailwind-merge's class groups. Variant modifiers and the important marker
// scope a conflict. Classes tailwind-merge does not recognise are only
// deduplicated, keeping the last occurrence.
func Merge(classes ...string) string {
	joined := strings.Join(strings.Fields(strings.Join(classes, " ")), " ")
	if joined == "" {
		return ""
	}
	return dedupe(twmerge.Merge(joined))
}

// dedupe drops repeated classes, keeping the position of the last one.
func dedupe(classes string) string {
	fields := strings.Fields(classes)
	seen := make(map[string]struct{}, len(fields))
	kept := make([]string, 0, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		if _, dup := seen[fields[i]]; dup {
			continue
		}
		seen[fields[i]] = struct{}{}
		kept = append(kept, fields[i])
	}
	for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
		kept[l], kept[r] = kept[r], kept[l]
	}
	return strings.Join(kept, " ")
}
