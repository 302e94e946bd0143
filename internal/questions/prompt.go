package questions

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
)

type styleProfile struct {
	voice    string
	examples string
}

var styleProfiles = map[enums.QuizStyle]styleProfile{
	enums.QuizStyleFun: {
		voice:    "playful, upbeat and casual. Short sentences, light humour, an occasional exclamation mark. Never sarcastic.",
		examples: `"What's the big plan for your new find?", "Pick the vibe that feels most like you!"`,
	},
	enums.QuizStyleProfessional: {
		voice:    "neutral and businesslike. Clear, concise wording with no slang or exclamation marks.",
		examples: `"What is your budget?", "Which feature matters most to you?"`,
	},
	enums.QuizStyleDetailed: {
		voice:    "elaborate and informative. Each question may add a short clause explaining why it helps find the right product.",
		examples: `"Which price range fits the budget you have in mind for this purchase?"`,
	},
}

const responseSchema = `{
  "questions": [
    {
      "text": "string",
      "type": "multiple_choice | image_choice | text_input",
      "order": 0,
      "conditionalRules": null,
      "options": [
        {
          "text": "string",
          "matchingTags": ["tag from the allowed list"],
          "matchingTypes": ["type from the allowed list"],
          "budgetMin": 0,
          "budgetMax": 50
        }
      ]
    }
  ]
}`

// BuildPrompts renders the system and user prompts for one generative attempt.
func BuildPrompts(in Input) (string, string) {
	profile, ok := styleProfiles[in.Style]
	if !ok {
		profile = styleProfiles[enums.QuizStyleProfessional]
	}

	var sys strings.Builder
	sys.WriteString("You write product-finder quizzes for an online store. ")
	sys.WriteString("Shoppers answer the questions and each answer option is matched to products by tag, product type and budget.\n\n")
	fmt.Fprintf(&sys, "Tone: %s\nExample questions in this tone: %s\n\n", profile.voice, profile.examples)
	sys.WriteString("Rules:\n")
	fmt.Fprintf(&sys, "- Write between %d and %d questions.\n", MinQuestions, MaxQuestions)
	sys.WriteString("- The first question (order 0) is a budget question with exactly 4 options, one per price bracket given by the user. ")
	sys.WriteString("Each budget option sets budgetMin and budgetMax from its bracket (omit budgetMax for the open-ended bracket) and its matchingTypes only lists types priced inside that bracket.\n")
	sys.WriteString("- Include exactly one category question whose options enumerate the known product types, one type per option.\n")
	sys.WriteString("- Every other question is general and catalog-agnostic. Never ask a follow-up about one specific category.\n")
	sys.WriteString("- matchingTags and matchingTypes may only contain values from the allowed lists. Use empty arrays when nothing fits.\n")
	sys.WriteString("- Give every question a distinct order starting at 0.\n")
	sys.WriteString("- Respond with a single JSON object and nothing else, using this shape:\n")
	sys.WriteString(responseSchema)
	sys.WriteString("\n")

	var usr strings.Builder
	summary := in.Summary
	fmt.Fprintf(&usr, "Quiz style: %s\n\n", in.Style)
	if summary != nil {
		fmt.Fprintf(&usr, "Allowed tags: %s\n", quoteList(summary.Vocabulary.Tags))
		fmt.Fprintf(&usr, "Allowed product types: %s\n\n", quoteList(summary.Vocabulary.Types))
		if len(summary.PricesByType) > 0 {
			usr.WriteString("Prices by product type:\n")
			for _, tp := range summary.PricesByType {
				lo, ok := tp.Min()
				if !ok {
					fmt.Fprintf(&usr, "- %s: no prices\n", tp.Type)
					continue
				}
				hi, _ := tp.Max()
				fmt.Fprintf(&usr, "- %s: %d products, min %s, max %s\n", tp.Type, len(tp.Prices), lo.StringFixed(2), hi.StringFixed(2))
			}
			usr.WriteString("\n")
		}
	}
	usr.WriteString("Price brackets for the budget question:\n")
	for _, b := range in.Brackets {
		upper := "no upper limit"
		if b.Max != nil {
			upper = "below " + b.Max.StringFixed(2)
		}
		fmt.Fprintf(&usr, "%d. %q: from %s, %s; types priced here: %s\n", b.Index+1, b.Label(), b.Min.StringFixed(2), upper, quoteList(b.EligibleTypes))
	}
	return sys.String(), usr.String()
}

func quoteList(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
