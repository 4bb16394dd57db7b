package prompts

import (
	"fmt"
	"strings"
)

const CoachSystem = `You are a supportive writing coach for students aged 10-12.
Use positive, encouraging language. Acknowledge effort, then give one specific,
actionable suggestion the student can apply right away. Avoid academic jargon.`

const ParagraphTipTemplate = `INPUT PARAGRAPH:
%s
CURRENT RUBRIC SCORES (0-5): ideas %d, structure %d, language %d, mechanics %d.
WEAKEST AREA: %s
TASK: Give one short tip that would most improve this paragraph, focused on the weakest area,
and rewrite one sentence from the paragraph to show the tip in action.
CONSTRAINT: Do not quote character positions. Keep the tip under 40 words.
OUTPUT: JSON { "tip": string, "example_rewrite": string }`

const ParagraphTipDelimited = `If you cannot produce JSON, answer exactly as:
TIP: <tip>
EXAMPLE: <rewritten sentence>`

type Scores struct {
	Ideas     int
	Structure int
	Language  int
	Mechanics int
	Weakest   string
}

func ParagraphTipPrompt(paragraph string, s Scores) string {
	body := fmt.Sprintf(ParagraphTipTemplate, strings.TrimSpace(paragraph), s.Ideas, s.Structure, s.Language, s.Mechanics, s.Weakest)
	return strings.TrimSpace(body + "\n" + ParagraphTipDelimited)
}
