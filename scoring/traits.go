package scoring

// Traits are the flattened scoring-relevant fields of a profile document.
type Traits struct {
	MBTI     string
	Tags     []string
	Smoking  string
	Drinking string
	Degree   string
	Job      string
	Family   string
}

// TraitsFromAspects flattens a nested aspect document into scoring traits.
// Missing or malformed fields read as empty and simply contribute nothing.
func TraitsFromAspects(aspects map[string]any) Traits {
	t := Traits{
		MBTI:     nestedString(aspects, "personality", "mbti"),
		Smoking:  nestedString(aspects, "lifestyle", "smoking"),
		Drinking: nestedString(aspects, "lifestyle", "drinking"),
		Degree:   nestedString(aspects, "education", "degree"),
		Job:      nestedString(aspects, "career", "job"),
		Family:   nestedString(aspects, "family", "background"),
	}
	t.Tags = append(t.Tags, nestedStrings(aspects, "personality", "tags")...)
	t.Tags = append(t.Tags, nestedStrings(aspects, "interests", "tags")...)
	return t
}

func nestedMap(aspects map[string]any, key string) map[string]any {
	if m, ok := aspects[key].(map[string]any); ok {
		return m
	}
	return nil
}

func nestedString(aspects map[string]any, key, field string) string {
	if s, ok := nestedMap(aspects, key)[field].(string); ok {
		return s
	}
	return ""
}

func nestedStrings(aspects map[string]any, key, field string) []string {
	raw, ok := nestedMap(aspects, key)[field]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
