package domain

// SearchSource is the opaque query payload described in spec §3. The engine
// never interprets its contents beyond merging; the query DSL itself is out
// of scope (spec §1).
type SearchSource map[string]any

// DefaultSearchSource returns the internal template applied when a request
// supplies none: sort by insertion order, request the internal version on
// every hit, and page in batches of 100.
func DefaultSearchSource() SearchSource {
	return SearchSource{
		"sort":    []any{"_doc"},
		"version": true,
		"size":    100,
	}
}

// MergeSearchSource deep-merges user-supplied source onto the default
// template: user keys win on conflict, nested maps merge key-by-key, and any
// other value type is replaced wholesale rather than combined. No pack
// library exposes this exact "caller wins, recurse only into maps"
// semantics for map[string]any, so the merge is hand written.
func MergeSearchSource(base, override SearchSource) SearchSource {
	if base == nil && override == nil {
		return SearchSource{}
	}
	merged := make(SearchSource, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, ov := range override {
		bv, exists := merged[k]
		if !exists {
			merged[k] = ov
			continue
		}
		bm, bOK := bv.(map[string]any)
		om, oOK := ov.(map[string]any)
		if bOK && oOK {
			merged[k] = MergeSearchSource(bm, om)
			continue
		}
		merged[k] = ov
	}
	return merged
}
