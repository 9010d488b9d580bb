package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Class
	}{
		{"question mark", "What is vector search?", Question},
		{"question mark only marker", "Tell me about embeddings?", Question},
		{"leading wh-word", "what happened yesterday", Question},
		{"leading wh-word capitalized", "Where did we store the config", Question},
		{"leading auxiliary", "Is the index synced", Question},
		{"leading auxiliary modal", "Could we raise the threshold", Question},
		{"quoted question opener", `"why" is my favourite word`, Question},
		{"statement", "Vector search uses embeddings.", Statement},
		{"statement with wh mid-sentence", "I know what you did.", Statement},
		{"empty", "", Statement},
		{"whitespace only", "   \t\n", Statement},
		{"punctuation only", "!!!", Statement},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, Question, Classify("How does dedup work?"))
	}
}
