package enums

import (
	"fmt"
	"strings"
)

// QuizStyle controls the voice used for generated quiz copy.
type QuizStyle string

const (
	QuizStyleFun          QuizStyle = "fun"
	QuizStyleProfessional QuizStyle = "professional"
	QuizStyleDetailed     QuizStyle = "detailed"
)

var validQuizStyles = []QuizStyle{
	QuizStyleFun,
	QuizStyleProfessional,
	QuizStyleDetailed,
}

// String implements fmt.Stringer.
func (s QuizStyle) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuizStyle.
func (s QuizStyle) IsValid() bool {
	for _, candidate := range validQuizStyles {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQuizStyle converts raw input into a QuizStyle.
func ParseQuizStyle(value string) (QuizStyle, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validQuizStyles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quiz style %q", value)
}

// CoerceQuizStyle parses value and falls back to professional for anything unknown.
func CoerceQuizStyle(value string) QuizStyle {
	style, err := ParseQuizStyle(value)
	if err != nil {
		return QuizStyleProfessional
	}
	return style
}
