package domain

// Chat roles accepted by OpenAI-compatible chat completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryWindow is the number of prior turns replayed to the model.
const HistoryWindow = 8

// ChatMessage is the provider-agnostic chat message shape used by the handler,
// the relay client, and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecentWindow returns the last HistoryWindow entries of history in their
// original order. The returned slice is a copy.
func RecentWindow(history []ChatMessage) []ChatMessage {
	start := 0
	if len(history) > HistoryWindow {
		start = len(history) - HistoryWindow
	}
	out := make([]ChatMessage, len(history)-start)
	copy(out, history[start:])
	return out
}

// ChatResult is the uniform outcome handed back to relay callers. Exactly one
// of Message and Error is set.
type ChatResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Succeeded(message string) ChatResult {
	return ChatResult{Success: true, Message: message}
}

func Failed(errMsg string) ChatResult {
	return ChatResult{Success: false, Error: errMsg}
}
