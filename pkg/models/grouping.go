package models

import "time"

// ConversationSummary is the per-chat aggregate the grouper (C2) derives
// before persistence: message counts and first/last timestamps.
type ConversationSummary struct {
	ChatID            string
	CustomerMessages  int
	AgentMessages     int
	TotalMessages     int
	FirstMessageTime  time.Time
	LastMessageTime   time.Time
}

// DailyUnit is one (chat_id, analysis_date) group emitted by the grouper
// (C2): the ordered messages to be scored together as a single
// DailyAnalysis.
type DailyUnit struct {
	ChatID       string
	AnalysisDate time.Time // UTC midnight
	Messages     []NormalizedMessage
}

// TextLength returns the total character length of the unit's message
// content, the input to the C4 token estimate.
func (u DailyUnit) TextLength() int {
	n := 0
	for _, m := range u.Messages {
		n += len(m.MessageContent)
	}
	return n
}
