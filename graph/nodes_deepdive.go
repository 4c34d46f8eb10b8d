package graph

import (
	"context"
	"fmt"
	"strings"

	"match-agent/prompts"
	"match-agent/web/types"

	"go.uber.org/zap"
)

// clarifyReferent is the canonical question asked when deep-dive cannot
// tell who the user means. Guessing a candidate is worse than asking.
const clarifyReferent = "想再多了解哪位嘉宾呢？告诉我TA的昵称就可以～"

// deepDive answers a follow-up question about one previously shown
// candidate. Resolution runs in three stages: the extracted target name,
// the carried target from the last deep-dive, and finally a model pass
// over the shown candidates. No stage ever falls back to "the first one".
func (o *Orchestrator) deepDive(ctx context.Context, st *TurnState) (node, error) {
	shown, err := o.store.GetBasics(ctx, st.Carried.SeenIDs)
	if err != nil {
		return nodeEnd, err
	}

	target := o.resolveReferent(ctx, st, shown)
	if target == nil {
		st.Reply = clarifyReferent
		return nodeEnd, nil
	}
	st.Carried.LastTargetName = target.Nickname

	summary, err := o.profiles.Summary(ctx, target.ID)
	if err != nil {
		o.logger.Warn("Deep-dive summary unavailable", zap.String("user_id", target.ID), zap.Error(err))
	}
	snippets, err := o.store.SearchSnippets(ctx, target.ID, st.Request.Message, o.cfg.EvidenceSnippets)
	if err != nil {
		o.logger.Warn("Deep-dive snippet search failed", zap.String("user_id", target.ID), zap.Error(err))
	}

	user := fmt.Sprintf("【用户的问题】\n%s\n【嘉宾昵称】\n%s\n【嘉宾画像】\n%s\n【相关聊天记录】\n%s",
		st.Request.Message, target.Nickname, summary, strings.Join(snippets, "\n"))
	reply, err := o.llm.Generate(ctx, prompts.DeepDiveSystem(), user, 0.7)
	if err != nil {
		o.logger.Warn("Deep-dive generation failed", zap.Error(err))
		reply = fmt.Sprintf("关于%s：%s", target.Nickname, summary)
	}
	st.Reply = reply
	return nodeEnd, nil
}

func (o *Orchestrator) resolveReferent(ctx context.Context, st *TurnState, shown map[string]types.CandidateBasic) *types.CandidateBasic {
	if len(shown) == 0 {
		return nil
	}

	if c := matchNickname(shown, st.Intent.TargetPerson); c != nil {
		return c
	}
	if st.Intent.TargetPerson == "" {
		if c := matchNickname(shown, st.Carried.LastTargetName); c != nil {
			return c
		}
	}

	names := make([]string, 0, len(shown))
	for _, c := range shown {
		names = append(names, c.Nickname)
	}
	user := fmt.Sprintf("【用户消息】\n%s\n【已推荐的嘉宾昵称】\n%s", st.Request.Message, strings.Join(names, "、"))
	var resolved struct {
		Name string `json:"name"`
	}
	if err := o.llm.ExtractJSON(ctx, prompts.ReferentSystem(), user, &resolved); err != nil {
		o.logger.Warn("Referent resolution failed", zap.Error(err))
		return nil
	}
	return matchNickname(shown, resolved.Name)
}

// matchNickname finds a shown candidate by nickname, exact first, then
// containment either way. Ambiguity (multiple containment hits) resolves
// to nothing rather than to a guess.
func matchNickname(shown map[string]types.CandidateBasic, name string) *types.CandidateBasic {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, c := range shown {
		if c.Nickname == name {
			match := c
			return &match
		}
	}
	var hit *types.CandidateBasic
	for _, c := range shown {
		if strings.Contains(c.Nickname, name) || strings.Contains(name, c.Nickname) {
			if hit != nil {
				return nil
			}
			match := c
			hit = &match
		}
	}
	return hit
}
