package services

import (
	"fmt"
	"strings"
	"time"
)

// PromptBuilder renders the instruction templates sent to the model. All
// methods are pure: same inputs, same string out, no I/O.
type PromptBuilder struct {
	maxChars int
}

func NewPromptBuilder(maxChars int) *PromptBuilder {
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &PromptBuilder{maxChars: maxChars}
}

// BuildAssessmentPrompt creates the resume assessment prompt. The resume
// text is truncated to maxChars runes before embedding; oversized input is
// trimmed, never rejected. marketContext may be empty.
func (pb *PromptBuilder) BuildAssessmentPrompt(resumeText, marketContext string, now time.Time) string {
	resumeText = TruncateRunes(resumeText, pb.maxChars)

	var contextSection string
	if strings.TrimSpace(marketContext) != "" {
		contextSection = fmt.Sprintf("\nCURRENT MARKET CONTEXT:\n%s\n", marketContext)
	}

	return fmt.Sprintf(`You are an expert Career Counselor and AI Data Analyst.
Analyze the following resume text for a candidate aiming for a Junior Developer/Tech role.
Ground all market demand claims in current industry trends as of %s.
%s
RESUME TEXT:
%s

Return ONLY a single valid JSON object (no markdown formatting, no code fences) with this exact structure:
{
  "matchScore": (number 0-100),
  "softSkills": { "match": (number 0-100), "gap": (number 0-100) },
  "techSkills": [
    { "name": "Skill Name", "current": (0-100), "demand": (0-100) },
    { "name": "Skill Name", "current": (0-100), "demand": (0-100) },
    { "name": "Skill Name", "current": (0-100), "demand": (0-100) }
  ],
  "recommendations": ["Rec 1", "Rec 2", "Rec 3"],
  "missingSkills": ["Skill 1", "Skill 2"]
}

Base all reasoning only on the provided text. Do not assume experience not explicitly mentioned.`,
		now.Format("January 2006"), contextSection, resumeText)
}

// BuildMentorPreamble creates the system framing for a chat session. The
// embedded timestamp answers date/time questions without external grounding.
func (pb *PromptBuilder) BuildMentorPreamble(now time.Time) string {
	return fmt.Sprintf(`You are a helpful career mentor AI. Keep answers concise.
The current date and time is %s. Use it when the user asks about dates or deadlines.`,
		now.Format("Monday, January 2, 2006 at 3:04 PM MST"))
}

// MentorPreambleAck is the seeded assistant reply that completes the
// framing turn pair.
const MentorPreambleAck = "Understood. I am ready to help with career advice."

// TruncateRunes cuts s to at most max runes.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
