package enums

import "fmt"

// QuestionType mirrors the quiz_question_type column.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeImageChoice    QuestionType = "image_choice"
	QuestionTypeTextInput      QuestionType = "text_input"
)

var validQuestionTypes = []QuestionType{
	QuestionTypeMultipleChoice,
	QuestionTypeImageChoice,
	QuestionTypeTextInput,
}

// String implements fmt.Stringer.
func (t QuestionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known QuestionType.
func (t QuestionType) IsValid() bool {
	for _, candidate := range validQuestionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseQuestionType converts raw input into a QuestionType.
func ParseQuestionType(value string) (QuestionType, error) {
	for _, candidate := range validQuestionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid question type %q", value)
}

// QuestionSource identifies which generator produced a question set.
type QuestionSource string

const (
	QuestionSourceGenerative QuestionSource = "generative"
	QuestionSourceFallback   QuestionSource = "fallback"
)

// String implements fmt.Stringer.
func (s QuestionSource) String() string {
	return string(s)
}

// LLMProvider names the configured text-generation backend.
type LLMProvider string

const (
	LLMProviderNone   LLMProvider = "none"
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderGemini LLMProvider = "gemini"
)

var validLLMProviders = []LLMProvider{
	LLMProviderNone,
	LLMProviderOpenAI,
	LLMProviderGemini,
}

// ParseLLMProvider converts raw input into an LLMProvider. Empty input means none.
func ParseLLMProvider(value string) (LLMProvider, error) {
	if value == "" {
		return LLMProviderNone, nil
	}
	for _, candidate := range validLLMProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid llm provider %q", value)
}
