package domain

import "time"

// Roles used in a prior-turn transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of the prior-turn transcript sent with a follow-up.
// Field order matters: it is the canonical key order used for cache keys.
type Turn struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ThreadEntry is one node of a conversation thread, flattened with its depth
// below the root (root = 0).
type ThreadEntry struct {
	QuestionID       int64     `json:"question_id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	ParentQuestionID *int64    `json:"parent_question_id,omitempty"`
	Depth            int       `json:"depth"`
	AskedAt          time.Time `json:"asked_at"`
}

// HistoryItem is a question joined with its answer, as listed in a user's
// history. Answer is empty when the exchange has no stored answer.
type HistoryItem struct {
	ID               int64     `json:"id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	ParentQuestionID *int64    `json:"parent_question_id,omitempty"`
	AskedAt          time.Time `json:"asked_at"`
}

// ConversationThread is a root question with every follow-up below it,
// ordered by (depth, asked_at).
type ConversationThread struct {
	RootQuestionID int64         `json:"root_question_id"`
	Entries        []ThreadEntry `json:"entries"`
}

// SavedAnswerDetail is a saved answer joined with its root exchange and the
// full thread under that root.
type SavedAnswerDetail struct {
	ID                 int64         `json:"id"`
	QuestionID         int64         `json:"question_id"`
	Question           string        `json:"question"`
	Answer             string        `json:"answer"`
	Tags               []string      `json:"tags"`
	SavedAt            time.Time     `json:"saved_at"`
	ConversationThread []ThreadEntry `json:"conversation_thread"`
}
