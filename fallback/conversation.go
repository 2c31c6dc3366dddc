package fallback

import "sync"

// Message is one turn of a session's conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the explicit per-session context the caller owns and
// passes in; the planner itself is stateless. History is capped so prompts
// stay bounded. Safe for concurrent use: one session's conversation is
// shared across that session's in-flight requests.
type Conversation struct {
	SessionID string

	mu       sync.Mutex
	messages []Message
}

// historyLimit caps how many recent messages feed the prompt.
const historyLimit = 5

// NewConversation creates an empty conversation for a session.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

// Add appends one message to the history.
func (c *Conversation) Add(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Recent returns a copy of the last messages up to the history cap.
func (c *Conversation) Recent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := 0
	if len(c.messages) > historyLimit {
		start = len(c.messages) - historyLimit
	}
	out := make([]Message, len(c.messages)-start)
	copy(out, c.messages[start:])
	return out
}
