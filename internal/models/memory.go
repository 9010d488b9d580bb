package models

// MemoryType records which side of the conversation produced a memory.
type MemoryType string

const (
	MemoryTypePrompt   MemoryType = "prompt"
	MemoryTypeResponse MemoryType = "response"
)

func (t MemoryType) IsValid() bool {
	return t == MemoryTypePrompt || t == MemoryTypeResponse
}

// Memory is a retrievable unit of conversation text. The embedding is never
// serialized to API clients; it only travels between the two vector stores.
type Memory struct {
	ID              string            `json:"id"`
	Content         string            `json:"content"`
	Type            MemoryType        `json:"type"`
	Embedding       []float32         `json:"-"`
	OriginMessageID string            `json:"originMessageId"`
	Timestamp       int64             `json:"timestamp"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ScoredMemory pairs a memory with its normalized similarity score in [0,1].
type ScoredMemory struct {
	Memory *Memory `json:"memory"`
	Score  float64 `json:"score"`
}
