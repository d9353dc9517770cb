package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quizforge/domain/core"
	"quizforge/models"
)

func TestParseQuestions_CodeFenceAndDroppedElement(t *testing.T) {
	raw := "```json\n" + `[
		{"question": "Q1?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "B", "explanation": "because"},
		{"question": "Q2?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "C"},
		{"question": "Q3?", "option_a": "a", "option_b": "b", "option_c": "c", "correct_option": "A"}
	]` + "\n```"

	questions, err := ParseQuestions(raw, 10)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}

	// Third element is missing option_d and must be dropped silently
	if len(questions) != 2 {
		t.Fatalf("Expected 2 validated questions, got %d", len(questions))
	}
	if questions[0].CorrectOption != "B" {
		t.Errorf("Expected correct option B, got %s", questions[0].CorrectOption)
	}
	if questions[1].Explanation != "" {
		t.Errorf("Expected empty default explanation, got %q", questions[1].Explanation)
	}
}

func TestParseQuestions_InvalidCorrectOptionCoercedToA(t *testing.T) {
	raw := `[{"question": "Q?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "E"}]`

	questions, err := ParseQuestions(raw, 5)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if questions[0].CorrectOption != "A" {
		t.Errorf("Expected invalid letter coerced to A, got %s", questions[0].CorrectOption)
	}
}

func TestParseQuestions_LowercaseNormalized(t *testing.T) {
	raw := `[{"question": "Q?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": " c "}]`

	questions, err := ParseQuestions(raw, 5)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if questions[0].CorrectOption != "C" {
		t.Errorf("Expected normalized C, got %s", questions[0].CorrectOption)
	}
}

func TestParseQuestions_NoArray(t *testing.T) {
	_, err := ParseQuestions("Sorry, I cannot help with that.", 5)
	if err == nil {
		t.Fatal("Expected error for response without a JSON array")
	}
	if !errors.Is(err, core.ErrUpstreamFailure) {
		t.Errorf("Expected upstream failure, got %v", err)
	}
}

func TestParseQuestions_SurroundingProse(t *testing.T) {
	raw := `Here are your questions: [{"question": "Q?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "D"}] Hope this helps!`

	questions, err := ParseQuestions(raw, 5)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
}

func TestParseQuestions_TruncatedToCount(t *testing.T) {
	raw := `[
		{"question": "Q1?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "A"},
		{"question": "Q2?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "B"},
		{"question": "Q3?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "C"}
	]`

	questions, err := ParseQuestions(raw, 2)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected truncation to 2 questions, got %d", len(questions))
	}
	if questions[1].Question != "Q2?" {
		t.Errorf("Expected Q2? second, got %s", questions[1].Question)
	}
}

func TestParseQuestions_NonStringFieldsCoerced(t *testing.T) {
	raw := `[{"question": 42, "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "A"}]`

	questions, err := ParseQuestions(raw, 5)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if questions[0].Question != "42" {
		t.Errorf("Expected numeric question coerced to string, got %q", questions[0].Question)
	}
}

func TestParseQuestions_EmptyArrayIsValidParse(t *testing.T) {
	questions, err := ParseQuestions("[]", 5)
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("Expected 0 questions, got %d", len(questions))
	}
}

func TestFromText_TruncatesContext(t *testing.T) {
	mock := &MockChatClient{}
	adapter := NewGeneratorAdapter(mock)

	longText := strings.Repeat("x", promptContextLimit+500)
	_, err := adapter.FromText(context.Background(), longText, 3, models.DifficultyMedium)
	if err != nil {
		t.Fatalf("FromText failed: %v", err)
	}

	if len(mock.LastMessages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(mock.LastMessages))
	}
	prompt := mock.LastMessages[0].Content
	if strings.Contains(prompt, strings.Repeat("x", promptContextLimit+1)) {
		t.Error("Expected source text truncated before embedding in prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("x", promptContextLimit)) {
		t.Error("Expected the first 8000 characters kept in prompt")
	}
}

func TestFromTopic_ClientErrorSurfacesAsUpstream(t *testing.T) {
	mock := &MockChatClient{Error: context.DeadlineExceeded}
	adapter := NewGeneratorAdapter(mock)

	_, err := adapter.FromTopic(context.Background(), "photosynthesis", 5, models.DifficultyEasy)
	if err == nil {
		t.Fatal("Expected error from failing client")
	}
	if !errors.Is(err, core.ErrUpstreamFailure) {
		t.Errorf("Expected upstream failure, got %v", err)
	}
}

func TestFromTopic_EmbedsTopicAndDifficulty(t *testing.T) {
	mock := &MockChatClient{}
	adapter := NewGeneratorAdapter(mock)

	if _, err := adapter.FromTopic(context.Background(), "cell biology", 4, models.DifficultyHard); err != nil {
		t.Fatalf("FromTopic failed: %v", err)
	}

	prompt := mock.LastMessages[0].Content
	if !strings.Contains(prompt, `"cell biology"`) {
		t.Error("Expected topic embedded verbatim in prompt")
	}
	if !strings.Contains(prompt, "hard") {
		t.Error("Expected difficulty in prompt")
	}
	if !strings.Contains(prompt, "Generate exactly 4 multiple choice questions") {
		t.Error("Expected requested count in prompt")
	}
}
