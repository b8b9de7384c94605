package models

// Wire types of the external answer service (POST /query).

// Roles used in the answer service's conversational memory.
const (
	MemoryRoleUser      = "user"
	MemoryRoleAssistant = "assistant"
)

// MemoryMessage is one prior turn handed to the answer service as context.
type MemoryMessage struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The text content of the message
}

// QueryRequest is the body sent to the answer service.
type QueryRequest struct {
	Query  string          `json:"query"`
	TopK   int             `json:"top_k"`
	Memory []MemoryMessage `json:"memory"`
}

// RetrievedDocument is a supporting document returned alongside an answer.
type RetrievedDocument struct {
	Header  string `json:"header"`
	Content string `json:"content"`
}

// QueryResponse is the answer service's reply.
type QueryResponse struct {
	Answer             string              `json:"answer"`
	RetrievedDocuments []RetrievedDocument `json:"retrieved_documents"`
}

// MemoryRoleFor maps a stored sender role onto the answer service's role vocabulary.
func MemoryRoleFor(senderRole string) string {
	if senderRole == SenderRoleChatbot {
		return MemoryRoleAssistant
	}
	return MemoryRoleUser
}
