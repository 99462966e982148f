package core

import (
	"strings"
)

// Product-mandated response constants. The exact wording is part of the
// product contract; change it here, never inline at a call site.
const (
	// FallbackMessage is what the assistant must say when the knowledge base
	// has no answer.
	FallbackMessage = "I don't have that specific information in my knowledge base. " +
		"Please check our website at inovuslabs.org or follow our social media @inovuslabs " +
		"for the most up-to-date information."

	// OutOfScopeMessage is the refusal for questions outside the domain.
	OutOfScopeMessage = "I can only answer questions related to Inovus Labs IEDC. " +
		"Please ask about our programs, events, or initiatives."
)

// NoContextMarker documents the absence of retrieved chunks explicitly
// instead of handing the model an empty string.
const NoContextMarker = "[No additional static context found.]"

const chunkSeparator = "\n---\n"

// followUpIndicators flag a question as a continuation of the conversation.
// The broad pronouns ("it", "that", "this") are known to misfire on ordinary
// initial questions; that behavior is kept as shipped pending product
// guidance.
var followUpIndicators = []string{
	"tell me more", "elaborate", "can you explain", "what about", "more details",
	"expand on", "continue", "go on", "what else", "anything else",
	"that", "this", "it", "they", "them", "above", "mentioned",
	"requirements", "process", "steps", "how long", "when", "where",
}

// IsFollowUpQuestion classifies a question as a follow-up by lexical
// indicators alone. Pure and deterministic.
func IsFollowUpQuestion(question string) bool {
	lower := strings.ToLower(question)
	for _, indicator := range followUpIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// AssembleContext joins retrieved chunk contents with a visible separator.
// Zero chunks produce the explicit no-context marker.
func AssembleContext(chunks []string) string {
	if len(chunks) == 0 {
		return NoContextMarker
	}
	return strings.Join(chunks, chunkSeparator)
}

// BuildSystemInstruction renders the full system instruction: identity
// preamble, behavior rules (with the mandated fallback and refusal wording),
// mode-specific guidance, and the knowledge sections. Empty live data and
// digest omit their blocks entirely.
func BuildSystemInstruction(context, liveData, digest string, isFollowUp bool) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for Inovus Labs IEDC at Kristu Jyoti College (inovuslabs.org, @inovuslabs). ")
	b.WriteString("You MUST only use the provided context to answer questions.\n\n")

	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- You can ONLY answer questions about Inovus Labs IEDC using the provided context\n")
	b.WriteString("- If the answer is not found in the provided context, you MUST respond: \"" + FallbackMessage + "\"\n")
	b.WriteString("- NEVER make up or infer information not explicitly provided in the context\n")
	b.WriteString("- NEVER use external knowledge beyond what's provided\n")
	b.WriteString("- For off-topic questions: \"" + OutOfScopeMessage + "\"\n")
	b.WriteString("- Use proper HTML with semantic structure (body tag)\n")
	b.WriteString("- NO markdown formatting, NO CSS styles\n")
	b.WriteString("- Maintain a friendly, helpful tone\n")
	b.WriteString("- Use emojis appropriately to enhance engagement\n")

	if isFollowUp {
		b.WriteString("- Build naturally on the previous conversation context\n")
	} else {
		b.WriteString("- Valid topics: programs, events, startups, innovation, entrepreneurship, workshops, mentorship, funding opportunities\n")
		b.WriteString("- Provide actionable next steps when applicable\n")
	}

	b.WriteString("\nKNOWLEDGE BASE:\n")
	b.WriteString(context)

	if liveData != "" {
		b.WriteString("\n\nLIVE DATA:\n")
		b.WriteString(liveData)
	}

	if digest != "" {
		b.WriteString("\n\nCONVERSATION SUMMARY (older messages):\n")
		b.WriteString(digest)
	}

	return b.String()
}

// BuildUserQuery wraps the question in its classified mode tag, forming the
// newest turn of the chat session.
func BuildUserQuery(question string, isFollowUp bool) string {
	mode := "initial"
	if isFollowUp {
		mode = "follow_up"
	}
	return "<user_query type=\"" + mode + "\">\n" + question + "\n</user_query>"
}
