package query

import (
	"testing"
	"time"

	"match-agent/web/types"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestBuildCandidateFilterBirthdayBounds(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	spec := types.FilterSpec{AgeMin: intp(25), AgeMax: intp(30)}

	f := BuildCandidateFilter(spec, "男", nil, 200, now)

	wantMin := time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantMax := time.Date(2001, time.December, 31, 0, 0, 0, 0, time.UTC)
	if f.BirthMin == nil || !f.BirthMin.Equal(wantMin) {
		t.Errorf("BirthMin = %v, want %v", f.BirthMin, wantMin)
	}
	if f.BirthMax == nil || !f.BirthMax.Equal(wantMax) {
		t.Errorf("BirthMax = %v, want %v", f.BirthMax, wantMax)
	}
}

func TestBuildCandidateFilterForcesOppositeGender(t *testing.T) {
	now := time.Now()
	if got := BuildCandidateFilter(types.FilterSpec{}, "男", nil, 0, now).Gender; got != "女" {
		t.Errorf("male seeker should target 女, got %q", got)
	}
	if got := BuildCandidateFilter(types.FilterSpec{}, "女", nil, 0, now).Gender; got != "男" {
		t.Errorf("female seeker should target 男, got %q", got)
	}
}

func TestBuildCandidateFilterCarriesExclusions(t *testing.T) {
	f := BuildCandidateFilter(types.FilterSpec{}, "女", []string{"self", "seen-1"}, 200, time.Now())
	if len(f.ExcludeIDs) != 2 {
		t.Fatalf("expected 2 exclusions, got %v", f.ExcludeIDs)
	}
	if f.Limit != 200 {
		t.Fatalf("expected limit 200, got %d", f.Limit)
	}
}

func TestRefineDropsCityFirst(t *testing.T) {
	spec := types.FilterSpec{
		City:   []string{"上海"},
		AgeMin: intp(25),
		AgeMax: intp(30),
	}

	relaxed, ok := Refine(spec)
	if !ok {
		t.Fatal("expected a relaxation step")
	}
	if len(relaxed.City) != 0 {
		t.Fatalf("city should be dropped, got %v", relaxed.City)
	}
	if *relaxed.AgeMin != 25 || *relaxed.AgeMax != 30 {
		t.Fatal("age bounds must be untouched while a city remains")
	}
}

func TestRefineWidensAgeAndBMIAfterCity(t *testing.T) {
	spec := types.FilterSpec{
		AgeMin: intp(25),
		AgeMax: intp(30),
		BMIMin: floatp(18.5),
		BMIMax: floatp(24),
	}

	relaxed, ok := Refine(spec)
	if !ok {
		t.Fatal("expected a relaxation step")
	}
	if *relaxed.AgeMin != 20 || *relaxed.AgeMax != 35 {
		t.Errorf("age bounds = [%d, %d], want [20, 35]", *relaxed.AgeMin, *relaxed.AgeMax)
	}
	if *relaxed.BMIMin != 16.5 || *relaxed.BMIMax != 26 {
		t.Errorf("BMI bounds = [%v, %v], want [16.5, 26]", *relaxed.BMIMin, *relaxed.BMIMax)
	}
}

func TestRefineAgeFloorClamps(t *testing.T) {
	spec := types.FilterSpec{AgeMin: intp(20)}
	relaxed, ok := Refine(spec)
	if !ok {
		t.Fatal("expected a relaxation step")
	}
	if *relaxed.AgeMin != 18 {
		t.Errorf("AgeMin = %d, want clamp at 18", *relaxed.AgeMin)
	}
}

func TestRefineExhausted(t *testing.T) {
	if _, ok := Refine(types.FilterSpec{Keywords: "温柔"}); ok {
		t.Fatal("a spec with no relaxable constraints must report exhaustion")
	}
}

func TestRefineDoesNotMutateInput(t *testing.T) {
	min := 25
	spec := types.FilterSpec{AgeMin: &min}
	Refine(spec)
	if min != 25 {
		t.Fatalf("input spec mutated, AgeMin now %d", min)
	}
}
