package graph

import (
	"context"
	"fmt"

	"match-agent/config"
	"match-agent/errors"
	"match-agent/scoring"
	"match-agent/web/types"

	"go.uber.org/zap"
)

// maxSteps bounds the node walk. The graph has no cycle longer than
// hard_filter -> refine_query, itself bounded by the retry budget, so this
// is a safety net, not a tuning knob.
const maxSteps = 32

// Orchestrator walks one conversational turn through the dialogue graph.
// Turns are processed serially per session; the only parallelism lives
// inside the profile extraction fan-out.
type Orchestrator struct {
	store     Store
	recaller  Recaller
	extractor Extractor
	profiles  Profiles
	llm       LLM
	term      Terminator
	cfg       *config.Config
	logger    *zap.Logger
	handlers  map[node]nodeFunc
}

func New(store Store, recaller Recaller, extractor Extractor, profiles Profiles, llm LLM, term Terminator, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		recaller:  recaller,
		extractor: extractor,
		profiles:  profiles,
		llm:       llm,
		term:      term,
		cfg:       cfg,
		logger:    logger,
	}
	o.handlers = map[node]nodeFunc{
		nodeLoadProfile:    o.loadProfile,
		nodeOnboarding:     o.onboardingTurn,
		nodeIntent:         o.classifyIntent,
		nodeHardFilter:     o.hardFilter,
		nodeRefineQuery:    o.refineQuery,
		nodeSemanticRecall: o.semanticRecall,
		nodeRanking:        o.ranking,
		nodeEvidence:       o.evidenceHunting,
		nodeResponse:       o.generateResponse,
		nodeChitchat:       o.chitchat,
		nodeDeepDive:       o.deepDive,
	}
	return o
}

// Run executes one turn and returns the reply plus the updated carried
// context. The caller owns persisting both.
func (o *Orchestrator) Run(ctx context.Context, req types.TurnRequest, carried types.CarriedContext, history []types.AgentMessage) (types.TurnResult, error) {
	st := &TurnState{
		Request: req,
		Carried: carried,
		History: history,
	}

	current := nodeLoadProfile
	for steps := 0; current != nodeEnd; steps++ {
		if steps >= maxSteps {
			return types.TurnResult{}, fmt.Errorf("dialogue graph did not terminate after %d steps", maxSteps)
		}
		handler, ok := o.handlers[current]
		if !ok {
			return types.TurnResult{}, fmt.Errorf("no handler for node %q", current)
		}
		next, err := handler(ctx, st)
		if err != nil {
			return types.TurnResult{}, errors.WrapErrorf(err, "node %s", current)
		}
		o.logger.Debug("Turn advanced",
			zap.String("session_id", req.SessionID),
			zap.String("from", string(current)), zap.String("to", string(next)))
		current = next
	}

	return types.TurnResult{
		Reply:      st.Reply,
		Intent:     st.Intent.Intent,
		Candidates: st.Finalists,
		Context:    st.Carried,
		Debug:      types.TurnDebug{Filter: st.Filter, Keywords: st.Keywords},
	}, nil
}

// loadProfile hydrates the seeker's basics and traits before anything else
// runs. An unknown seeker fails the turn outright; a seeker who has not
// finished the interview goes back into it instead of the search pipeline.
func (o *Orchestrator) loadProfile(ctx context.Context, st *TurnState) (node, error) {
	basic, err := o.store.GetBasic(ctx, st.Request.UserID)
	if err != nil {
		return nodeEnd, err
	}
	st.Seeker = basic

	if !basic.Onboarded {
		return nodeOnboarding, nil
	}

	rec, err := o.store.GetProfile(ctx, st.Request.UserID)
	if err != nil {
		o.logger.Warn("Seeker profile unavailable, scoring without traits",
			zap.String("user_id", st.Request.UserID), zap.Error(err))
	} else {
		st.SeekerTraits = scoring.TraitsFromAspects(rec.Aspects)
	}
	return nodeIntent, nil
}
