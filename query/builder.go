package query

import (
	"time"

	"match-agent/database"
	"match-agent/web/types"
)

// OppositeGender maps the seeker's gender to the side retrieval targets.
// Matching is strictly cross-gender regardless of what the message says.
func OppositeGender(gender string) string {
	switch gender {
	case "男":
		return "女"
	case "女":
		return "男"
	}
	return ""
}

// BuildCandidateFilter lowers the typed constraint spec into the SQL-side
// filter. Age bounds become birthday bounds anchored to calendar years: an
// age ceiling admits anyone born on or after Jan 1 of (year - ceiling), an
// age floor admits anyone born on or before Dec 31 of (year - floor).
func BuildCandidateFilter(spec types.FilterSpec, seekerGender string, excludeIDs []string, limit int, now time.Time) database.CandidateFilter {
	f := database.CandidateFilter{
		Gender:     OppositeGender(seekerGender),
		Cities:     spec.City,
		HeightMin:  spec.HeightMin,
		HeightMax:  spec.HeightMax,
		BMIMin:     spec.BMIMin,
		BMIMax:     spec.BMIMax,
		ExcludeIDs: excludeIDs,
		Limit:      limit,
	}
	if spec.AgeMax != nil {
		min := time.Date(now.Year()-*spec.AgeMax, time.January, 1, 0, 0, 0, 0, time.UTC)
		f.BirthMin = &min
	}
	if spec.AgeMin != nil {
		max := time.Date(now.Year()-*spec.AgeMin, time.December, 31, 0, 0, 0, 0, time.UTC)
		f.BirthMax = &max
	}
	return f
}

// Refine relaxes the constraint spec by one deterministic step and reports
// whether anything changed. The city constraint always goes first; only
// once no city remains do age and BMI bounds widen (age by 5 years each
// way, BMI by 2 points each way). A false return means the spec cannot be
// loosened further and the search should give up.
func Refine(spec types.FilterSpec) (types.FilterSpec, bool) {
	if len(spec.City) > 0 {
		spec.City = nil
		return spec, true
	}

	changed := false
	if spec.AgeMin != nil {
		v := *spec.AgeMin - 5
		if v < 18 {
			v = 18
		}
		if v != *spec.AgeMin {
			spec.AgeMin = &v
			changed = true
		}
	}
	if spec.AgeMax != nil {
		v := *spec.AgeMax + 5
		spec.AgeMax = &v
		changed = true
	}
	if spec.BMIMin != nil {
		v := *spec.BMIMin - 2
		spec.BMIMin = &v
		changed = true
	}
	if spec.BMIMax != nil {
		v := *spec.BMIMax + 2
		spec.BMIMax = &v
		changed = true
	}
	return spec, changed
}
