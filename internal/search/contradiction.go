// ABOUTME: Contradiction detection combining a similarity prefilter with model judgment
// ABOUTME: Tolerant JSON extraction from chat output; failures degrade per pair
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mbrook/engram/internal/models"
)

// ChatProvider is the slice of the provider contract the detector needs.
type ChatProvider interface {
	Chat(ctx context.Context, message, contextText string) (string, error)
}

const contradictionSystemPrompt = `You are a contradiction detection assistant. Given two statements, decide whether they semantically contradict each other.

Return ONLY a JSON object with these fields:
- contradicts: true or false
- confidence: 0 to 100
- explanation: one short sentence

No additional text.`

// Pair is one (text1, text2) comparison in a batch analysis.
type Pair struct {
	ID1   string
	Text1 string
	ID2   string
	Text2 string
}

// Detector runs the two-stage contradiction pipeline: a cheap numeric
// prefilter, then one model call per surviving candidate.
type Detector struct {
	chat      ChatProvider
	threshold float64
}

// NewDetector creates a detector. threshold <= 0 uses the default 0.7
// similarity prefilter.
func NewDetector(chat ChatProvider, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{chat: chat, threshold: threshold}
}

// DetectContradictions compares a new memory against existing ones. Memories
// below the similarity threshold never reach the model. Only verdicts where
// contradicts is true are returned; a model failure for one candidate degrades
// that candidate to a non-contradiction instead of aborting.
func (d *Detector) DetectContradictions(ctx context.Context, newID, newContent string, newEmbedding []float64, existing []models.Memory) ([]models.Verdict, error) {
	candidates := FindSimilar(newEmbedding, existing, FindOptions{
		Threshold:  d.threshold,
		Limit:      len(existing) + 1,
		ExcludeIDs: []string{newID},
	})

	verdicts := []models.Verdict{}
	for _, candidate := range candidates {
		verdict := d.judge(ctx, Pair{
			ID1:   newID,
			Text1: newContent,
			ID2:   candidate.ID,
			Text2: candidate.Content,
		})
		if verdict.Contradicts {
			verdicts = append(verdicts, verdict)
		}
	}
	return verdicts, nil
}

// AnalyzePairs judges many pairs independently. A model failure for one pair
// yields a default non-contradiction verdict for that pair only.
func (d *Detector) AnalyzePairs(ctx context.Context, pairs []Pair) []models.Verdict {
	verdicts := make([]models.Verdict, len(pairs))
	for i, pair := range pairs {
		verdicts[i] = d.judge(ctx, pair)
	}
	return verdicts
}

// judge issues one model call for a pair. Any failure, including unparseable
// output, returns the conservative default verdict.
func (d *Detector) judge(ctx context.Context, pair Pair) models.Verdict {
	verdict := models.Verdict{Memory1ID: pair.ID1, Memory2ID: pair.ID2}

	prompt := fmt.Sprintf("Statement 1: %s\n\nStatement 2: %s\n\nDo these statements contradict each other?", pair.Text1, pair.Text2)
	response, err := d.chat.Chat(ctx, prompt, contradictionSystemPrompt)
	if err != nil {
		log.Printf("Warning: contradiction check failed for pair (%s, %s): %v", pair.ID1, pair.ID2, err)
		return verdict
	}

	parsed, ok := parseVerdictJSON(response)
	if !ok {
		return verdict
	}

	if parsed.Contradicts != nil {
		verdict.Contradicts = *parsed.Contradicts
	}
	verdict.Confidence = clampConfidence(parsed.Confidence)
	verdict.Explanation = parsed.Explanation
	return verdict
}

type verdictResponse struct {
	Contradicts *bool   `json:"contradicts"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// parseVerdictJSON extracts the first valid JSON object from model output
// that may wrap it in prose or code fences.
func parseVerdictJSON(response string) (verdictResponse, bool) {
	var parsed verdictResponse
	for start := 0; start < len(response); start++ {
		if response[start] != '{' {
			continue
		}
		end, ok := balancedObjectEnd(response, start)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err == nil {
			return parsed, true
		}
	}
	return parsed, false
}

// balancedObjectEnd finds the index of the brace closing the object opened at
// start, ignoring braces inside JSON strings.
func balancedObjectEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func clampConfidence(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
