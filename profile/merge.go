package profile

// SmartMerge folds newly extracted facts into an existing document without
// losing accumulated detail. Nested maps merge recursively, lists union
// with duplicates removed, and scalars overwrite. A scalar meeting a list
// is first wrapped into a singleton so no earlier value is dropped. The
// inputs are never mutated.
func SmartMerge(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	for key, newVal := range incoming {
		if isEmptyValue(newVal) {
			continue
		}
		oldVal, ok := merged[key]
		if !ok || isEmptyValue(oldVal) {
			merged[key] = newVal
			continue
		}
		merged[key] = mergeValue(oldVal, newVal)
	}
	return merged
}

func mergeValue(oldVal, newVal any) any {
	oldMap, oldIsMap := oldVal.(map[string]any)
	newMap, newIsMap := newVal.(map[string]any)
	if oldIsMap && newIsMap {
		return SmartMerge(oldMap, newMap)
	}

	oldList, oldIsList := asList(oldVal)
	newList, newIsList := asList(newVal)
	if oldIsList || newIsList {
		if !oldIsList {
			oldList = []any{oldVal}
		}
		if !newIsList {
			newList = []any{newVal}
		}
		return unionLists(oldList, newList)
	}

	// Scalar vs scalar (or map vs scalar): the newer observation wins.
	return newVal
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// unionLists keeps the existing order and appends unseen items. Only
// comparable items participate in dedup; anything else is appended as is.
func unionLists(oldList, newList []any) []any {
	result := make([]any, 0, len(oldList)+len(newList))
	seen := make(map[any]bool)
	appendItem := func(item any) {
		switch item.(type) {
		case string, bool, float64, int:
			if seen[item] {
				return
			}
			seen[item] = true
		}
		result = append(result, item)
	}
	for _, item := range oldList {
		appendItem(item)
	}
	for _, item := range newList {
		appendItem(item)
	}
	return result
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
