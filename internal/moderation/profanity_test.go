package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProfane(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		profane bool
	}{
		{"Clean text", "A lovely recipe for sourdough bread", false},
		{"Spam term", "buy cheap viagra now", true},
		{"Uppercase", "BUY CHEAP VIAGRA NOW", true},
		{"Mixed case", "ViAgRa", true},
		{"Profanity mid-sentence", "well that is a load of shit honestly", true},
		{"Substring not flagged", "the class assembled near the passage", false},
		{"Scunthorpe", "a dispatch from Scunthorpe", false},
		{"Punctuation boundary", "what the fuck!", true},
		{"Empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.profane, IsProfane(tt.text))
		})
	}
}
