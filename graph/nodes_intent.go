package graph

import (
	"context"
	"reflect"

	"match-agent/query"
	"match-agent/web/types"
)

// classifyIntent reads the turn and routes it. Refresh without carried
// criteria downgrades to a fresh search; a fresh search whose constraints
// differ materially from the carried ones resets the seen set.
func (o *Orchestrator) classifyIntent(ctx context.Context, st *TurnState) (node, error) {
	result, err := o.extractor.ExtractIntent(ctx, st.Request.Message, recentHistory(st.History, 6))
	if err != nil {
		return nodeEnd, err
	}
	st.Intent = result

	switch result.Intent {
	case query.IntentChitchat:
		return nodeChitchat, nil
	case query.IntentDeepDive:
		return nodeDeepDive, nil
	case query.IntentRefresh:
		if st.Carried.LastCriteria != nil {
			st.Filter = st.Carried.LastCriteria.Filter
			st.Keywords = st.Carried.LastCriteria.Keywords
			st.Policy = st.Carried.LastCriteria.Policy
			if result.Keywords != "" {
				st.Keywords = result.Keywords
			}
			if !result.MatchPolicy.Empty() {
				st.Policy = result.MatchPolicy
			}
			st.Carried.LastCriteria = &types.SearchCriteria{
				Filter: st.Filter, Keywords: st.Keywords, Policy: st.Policy,
			}
			return nodeHardFilter, nil
		}
		// Nothing to refresh from; treat as a new search.
		fallthrough
	default:
		st.Intent.Intent = result.Intent
		return o.prepareNewSearch(ctx, st)
	}
}

func (o *Orchestrator) prepareNewSearch(ctx context.Context, st *TurnState) (node, error) {
	spec, err := o.extractor.ExtractFilter(ctx, st.Request.Message)
	if err != nil {
		return nodeEnd, err
	}
	st.Filter = spec
	st.Keywords = st.Intent.Keywords
	if st.Keywords == "" {
		st.Keywords = spec.Keywords
	}
	st.Policy = st.Intent.MatchPolicy

	criteria := types.SearchCriteria{Filter: st.Filter, Keywords: st.Keywords, Policy: st.Policy}
	if st.Carried.LastCriteria == nil || criteriaChanged(*st.Carried.LastCriteria, criteria) {
		st.Carried.SeenIDs = nil
	}
	st.Carried.LastCriteria = &criteria
	return nodeHardFilter, nil
}

// criteriaChanged reports whether a new search is materially different
// from the carried one. Identical criteria keep the seen set so repeating
// the same request pages through fresh faces instead of recycling them.
func criteriaChanged(old, new types.SearchCriteria) bool {
	return !reflect.DeepEqual(old, new)
}

func recentHistory(history []types.AgentMessage, n int) []types.AgentMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
