package csinsight

import (
	"context"
	"strings"

	"github.com/cognicore/csinsight/internal/llm"
)

// Chat replies.
const (
	MsgTimeout     = "The request took too long to complete. Please try again or break your question into smaller parts."
	msgChatError   = "I encountered an error. Please try again. Error details: "
	MsgChatOffline = "No language model is configured, so I can only run the built-in analysis. Upload a CSV file and request an analysis to continue."
)

// promptMarker identifies a reply that carries a complete prompt.
const promptMarker = "complete analysis prompt"

const initialReply = `Individual transcript analysis selected.

The base template analyses one customer service transcript at a time. Each
turn starts with the speaker role (System, Bot, Customer, Consumer or Agent)
followed by ':' and ends with '|||'. Redacted names and emails appear as
placeholders.

Two details are needed to tailor it:

1. Which category or topic should the analysis focus on?
   (email, hosting, domain transfers, billing, ...)

2. Which aspects should be summarized?
   (pain points, customer needs, technical issues, ...)`

const summaryReply = `Summary of summaries analysis selected.

The report covers:
- Quantitative analysis with counts and percentages per issue category
- The top 3 issues with severity, impact, quotes and recommendations
- What's working well
- Additional insights, not found items and uncertainties

Tell me what to emphasise, or upload a CSV file with a 'conversation_summary'
column and request the analysis.`

const systemPrompt = `You help customer service teams write prompts for analysing call transcripts and batches of conversation summaries.

When presenting a finished prompt, open it with "Here is your complete analysis prompt:" and structure it with ### section headers and bullet points. A summary of summaries prompt must request a quantitative analysis with counts and percentages, the top 3 issues with recommendations, what is working well, additional insights, items that were looked for but not found, and open uncertainties.

Iterate on the draft until the user confirms it. Once a summary of summaries prompt is confirmed, tell the user to upload their CSV file; only the 'conversation_summary' column is analysed.`

// Chat handles one user message. The first message of a session may select
// a mode; later messages go to the chat collaborator with recent history.
func (e *Engine) Chat(ctx context.Context, s *Session, message string) string {
	if s.Mode() == ModeNone {
		switch strings.ToLower(strings.TrimSpace(message)) {
		case "1", "initial prompt":
			s.appendHistory(llm.Message{Role: llm.RoleUser, Content: message})
			s.setMode(ModeInitial)
			return initialReply
		case "2", "summary of summaries", "summary of summaries prompt":
			s.appendHistory(llm.Message{Role: llm.RoleUser, Content: message})
			s.setMode(ModeSummary)
			return summaryReply
		}
	}

	history := s.appendHistory(llm.Message{Role: llm.RoleUser, Content: message})
	if e.chat == nil {
		return MsgChatOffline
	}

	reply, err := e.chat.Chat(ctx, systemPrompt, history, message)
	if err != nil {
		e.logger.Warn("chat failed", "session", s.ID, "err", err)
		if llm.IsTimeout(err) || strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return MsgTimeout
		}
		return msgChatError + err.Error()
	}

	s.appendHistory(llm.Message{Role: llm.RoleAssistant, Content: reply})
	if strings.Contains(strings.ToLower(reply), promptMarker) {
		s.finalize(reply)
		e.logger.Info("prompt finalized", "session", s.ID)
	}
	return reply
}
