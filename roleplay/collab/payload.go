package collab

import contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"

// renderMessages flattens the most recent window of the transcript into
// the role/text shape the prompts document. Timestamps and meta stay out
// of the model's view.
func renderMessages(messages []contractx.ChatMessage, window int) []map[string]any {
	if window > 0 && len(messages) > window {
		messages = messages[len(messages)-window:]
	}

	rendered := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		rendered = append(rendered, map[string]any{
			"role": string(m.Role),
			"text": m.Text,
		})
	}
	return rendered
}
