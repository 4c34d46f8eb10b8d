package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"match-agent/prompts"

	"go.uber.org/zap"
)

// Evidence markers distinguish "nothing matched" from "nothing recorded".
const (
	markerNoEvidence = "（暂无相关聊天佐证）"
	markerNoRecords  = "（该嘉宾暂无聊天记录）"
)

type evidenceVerdict struct {
	HasEvidence bool   `json:"has_evidence"`
	Summary     string `json:"summary"`
}

// evidenceHunting attaches snippet-backed evidence to each finalist. Only
// first-person statements by the candidate count; the attribution check is
// the model's, the markers are ours.
func (o *Orchestrator) evidenceHunting(ctx context.Context, st *TurnState) (node, error) {
	evidenceQuery := st.Keywords
	if evidenceQuery == "" {
		evidenceQuery = st.Request.Message
	}

	for i := range st.Finalists {
		st.Finalists[i].Evidence = o.huntEvidence(ctx, st.Finalists[i].ID, evidenceQuery)
	}
	return nodeResponse, nil
}

func (o *Orchestrator) huntEvidence(ctx context.Context, candidateID, evidenceQuery string) string {
	snippets, err := o.store.SearchSnippets(ctx, candidateID, evidenceQuery, o.cfg.EvidenceSnippets)
	if err != nil {
		o.logger.Warn("Snippet search failed", zap.String("user_id", candidateID), zap.Error(err))
		return markerNoEvidence
	}
	if len(snippets) == 0 {
		hasAny, err := o.store.HasSnippets(ctx, candidateID)
		if err != nil || hasAny {
			return markerNoEvidence
		}
		return markerNoRecords
	}

	user := fmt.Sprintf("【用户关注点】\n%s\n【该嘉宾的聊天记录片段】\n%s",
		evidenceQuery, strings.Join(snippets, "\n"))
	var verdict evidenceVerdict
	if err := o.llm.ExtractJSON(ctx, prompts.EvidenceSystem(), user, &verdict); err != nil {
		o.logger.Warn("Evidence check failed", zap.String("user_id", candidateID), zap.Error(err))
		return markerNoEvidence
	}
	if !verdict.HasEvidence || verdict.Summary == "" {
		return markerNoEvidence
	}
	return verdict.Summary
}

// generateResponse writes the final reply: a recommendation when finalists
// exist, otherwise an apology that names what to loosen.
func (o *Orchestrator) generateResponse(ctx context.Context, st *TurnState) (node, error) {
	if len(st.Finalists) == 0 {
		st.Reply = o.failureReply(ctx, st)
		return nodeEnd, nil
	}

	rows := make([]string, 0, len(st.Finalists))
	for i, c := range st.Finalists {
		rows = append(rows, fmt.Sprintf("%d. %s | %d岁 | %s | %dcm | %s | 匹配度%d分 | 推荐理由: %s | 聊天佐证: %s\n   画像: %s",
			i+1, c.Nickname, c.Age, c.City, c.Height, c.BMILabel, c.Score,
			strings.Join(c.Reasons, "；"), c.Evidence, c.Summary))
	}
	user := fmt.Sprintf("【用户诉求】\n%s\n【待介绍嘉宾】\n%s", st.Request.Message, strings.Join(rows, "\n"))

	reply, err := o.llm.Generate(ctx, prompts.ResponseSystem(), user, 0.7)
	if err != nil {
		o.logger.Warn("Response generation failed, using plain listing", zap.Error(err))
		reply = "为你找到了这几位嘉宾：\n" + strings.Join(rows, "\n")
	}
	st.Reply = reply
	return nodeEnd, nil
}

func (o *Orchestrator) failureReply(ctx context.Context, st *TurnState) string {
	constraints, _ := json.Marshal(st.Filter)
	user := fmt.Sprintf("【用户诉求】\n%s\n【已尝试的筛选条件】\n%s\n【放宽次数】\n%d",
		st.Request.Message, constraints, st.SearchCount)
	reply, err := o.llm.Generate(ctx, prompts.FailureSystem(), user, 0.7)
	if err != nil {
		o.logger.Warn("Failure reply generation failed", zap.Error(err))
		return "很抱歉，按目前的条件暂时没有找到合适的嘉宾。要不要放宽一下城市或年龄范围，我再帮你找找？"
	}
	return reply
}

// chitchat keeps the consultant persona in the conversation without
// touching any search state.
func (o *Orchestrator) chitchat(ctx context.Context, st *TurnState) (node, error) {
	var b strings.Builder
	for _, msg := range recentHistory(st.History, 10) {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	fmt.Fprintf(&b, "user: %s", st.Request.Message)

	reply, err := o.llm.Generate(ctx, prompts.ChitchatSystem(), b.String(), 0.8)
	if err != nil {
		o.logger.Warn("Chitchat generation failed", zap.Error(err))
		reply = "我在的～想聊聊你的近况，还是让我帮你看看合适的嘉宾？"
	}
	st.Reply = reply
	return nodeEnd, nil
}
