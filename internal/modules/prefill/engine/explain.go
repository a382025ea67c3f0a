package engine

// BuildExplanations merges the per-stage reasons into the final ordered
// list: rules first, then pattern, then selection, then parameters.
// Duplicates keep only their first occurrence, so re-running over an
// already merged list is a no-op.
func BuildExplanations(ruleReasons, patternReasons, selectionReasons, paramReasons []string) []string {
	merged := make([]string, 0, len(ruleReasons)+len(patternReasons)+len(selectionReasons)+len(paramReasons))
	seen := make(map[string]struct{}, cap(merged))
	for _, group := range [][]string{ruleReasons, patternReasons, selectionReasons, paramReasons} {
		for _, reason := range group {
			if _, ok := seen[reason]; ok {
				continue
			}
			seen[reason] = struct{}{}
			merged = append(merged, reason)
		}
	}
	return merged
}
