package llmadapter

import (
	"fmt"
	"strings"

	"github.com/gl4d3/powerpulse/pkg/models"
)

// BuildPrompt embeds every unit's ordinal index and ordered messages
// (direction + content + timestamp) and instructs the model to return a
// strict JSON array of per-unit micro-metric objects, one per unit, in the
// same order.
func BuildPrompt(units []models.DailyUnit) string {
	var b strings.Builder
	b.WriteString("You are scoring customer-service conversation-days on five micro-metrics.\n")
	b.WriteString("For each unit below, return one JSON object with exactly these numeric fields:\n")
	b.WriteString("  sentiment_score (0 to 10), sentiment_shift (-5 to 5), resolution_achieved (0 to 10), fcr_score (0 to 10), ces (1 to 7, lower is better).\n")
	b.WriteString("Respond with a single JSON array of length ")
	fmt.Fprintf(&b, "%d", len(units))
	b.WriteString(", one object per unit in the order given, and nothing else: no prose, no markdown fences.\n\n")

	for i, unit := range units {
		fmt.Fprintf(&b, "Unit %d (chat_id=%s, date=%s):\n", i, unit.ChatID, unit.AnalysisDate.Format("2006-01-02"))
		for _, m := range unit.Messages {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", m.SocialCreateTime.Format("15:04:05"), m.Direction, m.MessageContent)
		}
		b.WriteString("\n")
	}

	return b.String()
}
