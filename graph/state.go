package graph

import (
	"context"

	"match-agent/database"
	"match-agent/query"
	"match-agent/scoring"
	"match-agent/termination"
	"match-agent/web/types"
)

// node labels in the dialogue graph.
type node string

const (
	nodeLoadProfile    node = "load_profile"
	nodeOnboarding     node = "onboarding"
	nodeIntent         node = "intent"
	nodeHardFilter     node = "hard_filter"
	nodeRefineQuery    node = "refine_query"
	nodeSemanticRecall node = "semantic_recall"
	nodeRanking        node = "ranking"
	nodeEvidence       node = "evidence_hunting"
	nodeResponse       node = "response"
	nodeChitchat       node = "chitchat"
	nodeDeepDive       node = "deep_dive"
	nodeEnd            node = "end"
)

// nodeFunc advances the turn and names the next node.
type nodeFunc func(ctx context.Context, st *TurnState) (node, error)

// TurnState is the working state of a single conversational turn. It lives
// for one Run call; everything that must survive the turn goes through
// Carried.
type TurnState struct {
	Request      types.TurnRequest
	Seeker       types.CandidateBasic
	SeekerTraits scoring.Traits
	Carried      types.CarriedContext
	History      []types.AgentMessage

	Intent   query.IntentResult
	Filter   types.FilterSpec
	Keywords string
	Policy   types.MatchPolicy

	AllowIDs    []string
	RecallIDs   []string
	Finalists   []types.Candidate
	SearchCount int

	Reply string
}

// Store is the persistence surface a turn needs.
type Store interface {
	GetBasic(ctx context.Context, userID string) (types.CandidateBasic, error)
	GetBasics(ctx context.Context, userIDs []string) (map[string]types.CandidateBasic, error)
	GetProfile(ctx context.Context, userID string) (database.ProfileRecord, error)
	FindCandidateIDs(ctx context.Context, f database.CandidateFilter) ([]string, error)
	SearchSnippets(ctx context.Context, userID, query string, k int) ([]string, error)
	HasSnippets(ctx context.Context, userID string) (bool, error)
	SetOnboarded(ctx context.Context, userID string, onboarded bool) error
}

// Recaller is the hybrid retrieval engine.
type Recaller interface {
	Recall(ctx context.Context, queryText, keywords string, allow []string) ([]string, error)
}

// Extractor reads intent and constraints out of user messages.
type Extractor interface {
	ExtractIntent(ctx context.Context, message string, history []types.AgentMessage) (query.IntentResult, error)
	ExtractFilter(ctx context.Context, message string) (types.FilterSpec, error)
}

// Profiles is the profile lifecycle service.
type Profiles interface {
	Absorb(ctx context.Context, userID, utterance string) (map[string]any, error)
	Summary(ctx context.Context, userID string) (string, error)
	CachedSummary(ctx context.Context, userID string) (string, error)
	RefreshSummary(ctx context.Context, userID string) (string, error)
	CompletionHint(ctx context.Context, aspects map[string]any) (string, error)
}

// LLM is the generation surface for reply nodes.
type LLM interface {
	ExtractJSON(ctx context.Context, system, user string, out any) error
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Terminator decides when interviews and chats should end.
type Terminator interface {
	CheckOnboarding(ctx context.Context, transcript string, turns int) termination.Signal
	CheckSocial(ctx context.Context, transcript string, messages int) termination.Signal
}
