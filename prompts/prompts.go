package prompts

import _ "embed"

// Embedded prompt files

//go:embed intent_system.txt
var intentSystem string

//go:embed filter_system.txt
var filterSystem string

//go:embed chitchat_system.txt
var chitchatSystem string

//go:embed evidence_system.txt
var evidenceSystem string

//go:embed response_system.txt
var responseSystem string

//go:embed failure_system.txt
var failureSystem string

//go:embed deep_dive_system.txt
var deepDiveSystem string

//go:embed referent_system.txt
var referentSystem string

//go:embed hesitancy_system.txt
var hesitancySystem string

//go:embed completeness_system.txt
var completenessSystem string

//go:embed natural_end_system.txt
var naturalEndSystem string

//go:embed profile_summary_system.txt
var profileSummarySystem string

//go:embed completion_hint_system.txt
var completionHintSystem string

//go:embed onboarding_system.txt
var onboardingSystem string

//go:embed aspect_extract_system.txt
var aspectExtractSystem string

func IntentSystem() string         { return intentSystem }
func FilterSystem() string         { return filterSystem }
func ChitchatSystem() string       { return chitchatSystem }
func EvidenceSystem() string       { return evidenceSystem }
func ResponseSystem() string       { return responseSystem }
func FailureSystem() string        { return failureSystem }
func DeepDiveSystem() string       { return deepDiveSystem }
func ReferentSystem() string       { return referentSystem }
func HesitancySystem() string      { return hesitancySystem }
func CompletenessSystem() string   { return completenessSystem }
func NaturalEndSystem() string     { return naturalEndSystem }
func ProfileSummarySystem() string { return profileSummarySystem }
func CompletionHintSystem() string { return completionHintSystem }
func OnboardingSystem() string     { return onboardingSystem }

// AspectExtractSystem is a template: callers substitute the aspect label,
// its extraction scope, and an output example.
func AspectExtractSystem() string { return aspectExtractSystem }
