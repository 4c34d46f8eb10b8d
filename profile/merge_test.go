package profile

import (
	"reflect"
	"testing"
)

func TestSmartMergeScalarOverwrite(t *testing.T) {
	existing := map[string]any{"degree": "本科"}
	incoming := map[string]any{"degree": "硕士"}

	got := SmartMerge(existing, incoming)
	if got["degree"] != "硕士" {
		t.Errorf("degree = %v, want newer value to win", got["degree"])
	}
}

func TestSmartMergeEmptyIncomingIgnored(t *testing.T) {
	existing := map[string]any{"degree": "硕士", "school": "复旦"}
	incoming := map[string]any{"degree": "", "school": nil}

	got := SmartMerge(existing, incoming)
	if got["degree"] != "硕士" || got["school"] != "复旦" {
		t.Errorf("empty incoming values must not erase stored facts, got %v", got)
	}
}

func TestSmartMergeListUnion(t *testing.T) {
	existing := map[string]any{"tags": []any{"徒步", "摄影"}}
	incoming := map[string]any{"tags": []any{"摄影", "烘焙"}}

	got := SmartMerge(existing, incoming)
	want := []any{"徒步", "摄影", "烘焙"}
	if !reflect.DeepEqual(got["tags"], want) {
		t.Errorf("tags = %v, want deduped union %v", got["tags"], want)
	}
}

func TestSmartMergeScalarMeetsList(t *testing.T) {
	existing := map[string]any{"sports": []any{"羽毛球"}}
	incoming := map[string]any{"sports": "游泳"}

	got := SmartMerge(existing, incoming)
	want := []any{"羽毛球", "游泳"}
	if !reflect.DeepEqual(got["sports"], want) {
		t.Errorf("sports = %v, want scalar wrapped into union %v", got["sports"], want)
	}
}

func TestSmartMergeListMeetsScalar(t *testing.T) {
	existing := map[string]any{"hobby": "钓鱼"}
	incoming := map[string]any{"hobby": []any{"露营"}}

	got := SmartMerge(existing, incoming)
	want := []any{"钓鱼", "露营"}
	if !reflect.DeepEqual(got["hobby"], want) {
		t.Errorf("hobby = %v, want %v", got["hobby"], want)
	}
}

func TestSmartMergeNestedMapsRecurse(t *testing.T) {
	existing := map[string]any{
		"career": map[string]any{"job": "教师", "income": "20万"},
	}
	incoming := map[string]any{
		"career": map[string]any{"job": "大学教师", "pace": "规律"},
	}

	got := SmartMerge(existing, incoming)
	career := got["career"].(map[string]any)
	if career["job"] != "大学教师" {
		t.Errorf("job = %v, want overwritten", career["job"])
	}
	if career["income"] != "20万" {
		t.Errorf("income = %v, want preserved", career["income"])
	}
	if career["pace"] != "规律" {
		t.Errorf("pace = %v, want added", career["pace"])
	}
}

func TestSmartMergeIdempotent(t *testing.T) {
	doc := map[string]any{
		"tags":   []any{"徒步"},
		"career": map[string]any{"job": "医生"},
	}
	once := SmartMerge(map[string]any{}, doc)
	twice := SmartMerge(once, doc)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merging the same document twice changed it: %v vs %v", once, twice)
	}
}

func TestSmartMergeDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"tags": []any{"徒步"}}
	incoming := map[string]any{"tags": []any{"摄影"}}

	SmartMerge(existing, incoming)
	if len(existing["tags"].([]any)) != 1 || len(incoming["tags"].([]any)) != 1 {
		t.Error("inputs were mutated by the merge")
	}
}

func TestMergeIntoNilDocument(t *testing.T) {
	got := MergeInto(nil, map[string]map[string]any{
		"education": {"degree": "博士"},
	})
	edu, ok := got["education"].(map[string]any)
	if !ok || edu["degree"] != "博士" {
		t.Errorf("merge into nil document failed: %v", got)
	}
}

func TestCollectTags(t *testing.T) {
	aspects := map[string]any{
		"personality": map[string]any{"tags": []any{"温和", "慢热"}},
		"interests":   map[string]any{"tags": []any{"徒步", "温和"}},
		"lifestyle":   map[string]any{"sports": []any{"羽毛球"}},
	}
	got := CollectTags(aspects)
	want := []string{"温和", "慢热", "徒步", "羽毛球"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}
