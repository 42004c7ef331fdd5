package store

// Merge deep-merges patch into base and returns the result. Nested objects
// are merged key by key; any other value, null included, replaces the
// existing one. Neither argument is modified.
func Merge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		patchObj, pok := v.(map[string]any)
		baseObj, bok := out[k].(map[string]any)
		if pok && bok {
			out[k] = Merge(baseObj, patchObj)
			continue
		}
		out[k] = v
	}
	return out
}
