package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"quizforge/domain/core"
	"quizforge/models"
	"quizforge/ports"
)

// promptContextLimit caps how much source text is embedded in a prompt.
// Truncation is silent.
const promptContextLimit = 8000

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "simple, straightforward questions that test basic recall and understanding",
	models.DifficultyMedium: "moderately challenging questions that require comprehension and some analysis",
	models.DifficultyHard:   "challenging questions that require deep understanding, critical thinking, and application",
}

// GeneratorAdapter implements QuestionGenerator using a chat-completion API
type GeneratorAdapter struct {
	client ports.ChatClient
}

// NewGeneratorAdapter creates a new question generator adapter
func NewGeneratorAdapter(client ports.ChatClient) *GeneratorAdapter {
	return &GeneratorAdapter{client: client}
}

func (g *GeneratorAdapter) FromText(ctx context.Context, text string, count int, difficulty models.Difficulty) ([]ports.GeneratedQuestion, error) {
	prompt := g.buildTextPrompt(text, count, difficulty)
	return g.generate(ctx, prompt, count)
}

func (g *GeneratorAdapter) FromTopic(ctx context.Context, topic string, count int, difficulty models.Difficulty) ([]ports.GeneratedQuestion, error) {
	prompt := g.buildTopicPrompt(topic, count, difficulty)
	return g.generate(ctx, prompt, count)
}

func (g *GeneratorAdapter) generate(ctx context.Context, prompt string, count int) ([]ports.GeneratedQuestion, error) {
	response, err := g.client.ChatCompletion(ctx, []ports.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, core.NewUpstreamError("question generation", err)
	}
	return ParseQuestions(response, count)
}

const questionJSONShape = `[
  {
    "question": "Question text here?",
    "option_a": "First option",
    "option_b": "Second option",
    "option_c": "Third option",
    "option_d": "Fourth option",
    "correct_option": "A",
    "explanation": "Brief explanation of why this answer is correct."
  }
]`

func (g *GeneratorAdapter) buildTextPrompt(text string, count int, difficulty models.Difficulty) string {
	content := truncateRunes(text, promptContextLimit)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d multiple choice questions based on the provided content.\n\n", count)
	fmt.Fprintf(&sb, "Difficulty level: %s — %s\n\n", difficulty, difficultyGuidance[difficulty])
	fmt.Fprintf(&sb, "Content:\n%s\n\n", content)
	fmt.Fprintf(&sb, "Return ONLY a valid JSON array, nothing else:\n%s\n\n", questionJSONShape)
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- Generate exactly %d questions\n", count)
	sb.WriteString("- correct_option must be exactly one of: A, B, C, D\n")
	sb.WriteString("- All 4 options must be plausible but only one correct\n")
	sb.WriteString("- Return ONLY the JSON array — no markdown, no explanation, no preamble")
	return sb.String()
}

func (g *GeneratorAdapter) buildTopicPrompt(topic string, count int, difficulty models.Difficulty) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d multiple choice questions about: %q\n\n", count, topic)
	fmt.Fprintf(&sb, "Difficulty level: %s — %s\n\n", difficulty, difficultyGuidance[difficulty])
	fmt.Fprintf(&sb, "Return ONLY a valid JSON array, nothing else:\n%s\n\n", questionJSONShape)
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- Generate exactly %d questions\n", count)
	sb.WriteString("- correct_option must be exactly one of: A, B, C, D\n")
	sb.WriteString("- All 4 options must be plausible but only one correct\n")
	sb.WriteString("- Cover different aspects of the topic\n")
	sb.WriteString("- Return ONLY the JSON array — no markdown, no explanation, no preamble")
	return sb.String()
}

var (
	fenceJSONRe = regexp.MustCompile("```json\\s*")
	fenceRe     = regexp.MustCompile("```\\s*")
)

var requiredKeys = []string{"question", "option_a", "option_b", "option_c", "option_d", "correct_option"}

// ParseQuestions recovers validated question records from a loosely
// structured model response. The repair policy is deliberately lenient:
// elements missing a required key are dropped silently, and an invalid
// correct_option letter is coerced to A rather than rejected. Zero records
// with a nil error is a valid outcome.
func ParseQuestions(raw string, count int) ([]ports.GeneratedQuestion, error) {
	text := strings.TrimSpace(raw)
	text = fenceJSONRe.ReplaceAllString(text, "")
	text = fenceRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, core.NewUpstreamError("question generation", fmt.Errorf("no JSON array found in model response"))
	}

	var elements []map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &elements); err != nil {
		return nil, core.NewUpstreamError("question generation", fmt.Errorf("malformed JSON array: %v", err))
	}

	if len(elements) > count {
		elements = elements[:count]
	}

	validated := make([]ports.GeneratedQuestion, 0, len(elements))
	for _, el := range elements {
		if missingKey(el, requiredKeys) {
			continue
		}

		correct := strings.ToUpper(strings.TrimSpace(coerceString(el["correct_option"])))
		switch correct {
		case "A", "B", "C", "D":
		default:
			correct = "A"
		}

		explanation := ""
		if v, ok := el["explanation"]; ok {
			explanation = coerceString(v)
		}

		validated = append(validated, ports.GeneratedQuestion{
			Question:      coerceString(el["question"]),
			OptionA:       coerceString(el["option_a"]),
			OptionB:       coerceString(el["option_b"]),
			OptionC:       coerceString(el["option_c"]),
			OptionD:       coerceString(el["option_d"]),
			CorrectOption: correct,
			Explanation:   explanation,
		})
	}

	return validated, nil
}

func missingKey(el map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := el[k]; !ok {
			return true
		}
	}
	return false
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
