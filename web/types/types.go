package types

import (
	"time"
)

// AgentMessage represents a message in the format expected by the LLM.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMessage represents a single message in a session, stored in the DB.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CandidateBasic is the hard-attribute row for a user, queried by the
// candidate store before any ranking happens.
type CandidateBasic struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Gender    string    `json:"gender"`
	City      string    `json:"city"`
	Height    int       `json:"height"` // cm
	Weight    int       `json:"weight"` // kg
	Birthday  time.Time `json:"birthday"`
	Onboarded bool      `json:"onboarded"`
}

// Candidate is a finalist as presented to the user: basic display fields
// plus ranking output.
type Candidate struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Age      int      `json:"age"`
	City     string   `json:"city"`
	Height   int      `json:"height"`
	BMILabel string   `json:"bmi_label"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
	Summary  string   `json:"summary"`
	Evidence string   `json:"evidence"`
}

// FilterSpec is the typed hard-constraint set extracted from free text.
// Keywords carries everything that is not a hard constraint.
type FilterSpec struct {
	City      []string `json:"city,omitempty"`
	HeightMin *int     `json:"height_min,omitempty"`
	HeightMax *int     `json:"height_max,omitempty"`
	AgeMin    *int     `json:"age_min,omitempty"`
	AgeMax    *int     `json:"age_max,omitempty"`
	BMIMin    *float64 `json:"bmi_min,omitempty"`
	BMIMax    *float64 `json:"bmi_max,omitempty"`
	Keywords  string   `json:"keywords,omitempty"`
}

// MatchPolicy weights the soft scoring dimensions. A weight of 3 is a hard
// requirement: mismatching candidates are vetoed outright.
type MatchPolicy struct {
	EducationWeight int    `json:"education_weight"`
	JobWeight       int    `json:"job_weight"`
	FamilyWeight    int    `json:"family_weight"`
	PreferredDegree string `json:"preferred_degree,omitempty"`
	PreferredJob    string `json:"preferred_job,omitempty"`
	PreferredFamily string `json:"preferred_family,omitempty"`
}

// Empty reports whether the policy carries no scoring signal at all.
func (p MatchPolicy) Empty() bool {
	return p.EducationWeight == 0 && p.JobWeight == 0 && p.FamilyWeight == 0
}

// SearchCriteria is the carried search context a "refresh" turn inherits.
type SearchCriteria struct {
	Filter   FilterSpec  `json:"filter"`
	Keywords string      `json:"keywords"`
	Policy   MatchPolicy `json:"policy"`
}

// CarriedContext is the cross-turn session state. Every field defaults to
// its empty value when missing, which is equivalent to a fresh search.
type CarriedContext struct {
	SeenIDs        []string        `json:"seen_ids,omitempty"`
	LastCriteria   *SearchCriteria `json:"last_criteria,omitempty"`
	LastTargetName string          `json:"last_target_name,omitempty"`
}

// TurnRequest is the orchestrator input for one conversational turn.
type TurnRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TurnDebug exposes the ephemeral constraint state of the turn.
type TurnDebug struct {
	Filter   FilterSpec `json:"filter"`
	Keywords string     `json:"keywords"`
}

// TurnResult is the orchestrator output for one conversational turn.
type TurnResult struct {
	Reply      string         `json:"reply"`
	Intent     string         `json:"intent"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Context    CarriedContext `json:"context"`
	Debug      TurnDebug      `json:"debug"`
}

// CalcAge converts a birthdate into whole years at the current time.
func CalcAge(birthday time.Time) int {
	if birthday.IsZero() {
		return 0
	}
	now := time.Now()
	age := now.Year() - birthday.Year()
	if now.YearDay() < birthday.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BMILabel maps height/weight to the body-type label shown in candidate
// headers. Boundaries follow the standard 18.5 / 24 / 28 bands.
func BMILabel(heightCm, weightKg int) string {
	if heightCm <= 0 || weightKg <= 0 {
		return "体态未知"
	}
	h := float64(heightCm) / 100
	bmi := float64(weightKg) / (h * h)
	switch {
	case bmi < 18.5:
		return "纤细"
	case bmi < 24:
		return "匀称"
	case bmi < 28:
		return "丰满"
	default:
		return "魁梧"
	}
}
