package services

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildAssessmentPromptTruncatesLongResume(t *testing.T) {
	pb := NewPromptBuilder(100)
	resume := strings.Repeat("a", 250)

	prompt := pb.BuildAssessmentPrompt(resume, "", time.Now())

	assert.Contains(t, prompt, strings.Repeat("a", 100))
	assert.NotContains(t, prompt, strings.Repeat("a", 101))
}

func TestBuildAssessmentPromptKeepsShortResumeUnmodified(t *testing.T) {
	pb := NewPromptBuilder(8000)
	resume := "Go developer, 3 years of backend experience."

	prompt := pb.BuildAssessmentPrompt(resume, "", time.Now())

	assert.Contains(t, prompt, resume)
}

func TestBuildAssessmentPromptEmbedsMonthYear(t *testing.T) {
	pb := NewPromptBuilder(8000)
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	prompt := pb.BuildAssessmentPrompt("some resume", "", now)

	assert.Contains(t, prompt, "March 2026")
}

func TestBuildAssessmentPromptIncludesMarketContext(t *testing.T) {
	pb := NewPromptBuilder(8000)

	withContext := pb.BuildAssessmentPrompt("resume", "Cloud skills are in demand.", time.Now())
	withoutContext := pb.BuildAssessmentPrompt("resume", "   ", time.Now())

	assert.Contains(t, withContext, "CURRENT MARKET CONTEXT")
	assert.Contains(t, withContext, "Cloud skills are in demand.")
	assert.NotContains(t, withoutContext, "CURRENT MARKET CONTEXT")
}

func TestBuildAssessmentPromptForbidsMarkdown(t *testing.T) {
	pb := NewPromptBuilder(8000)

	prompt := pb.BuildAssessmentPrompt("resume", "", time.Now())

	assert.Contains(t, prompt, "no markdown formatting")
	assert.Contains(t, prompt, `"matchScore"`)
}

func TestBuildMentorPreambleEmbedsFullDate(t *testing.T) {
	pb := NewPromptBuilder(8000)
	now := time.Date(2026, time.September, 1, 14, 5, 0, 0, time.UTC)

	preamble := pb.BuildMentorPreamble(now)

	assert.Contains(t, preamble, "Tuesday, September 1, 2026")
	assert.Contains(t, preamble, "2:05 PM")
}

func TestTruncateRunes(t *testing.T) {
	// Multi-byte runes must count as one character each
	text := strings.Repeat("é", 10)

	truncated := TruncateRunes(text, 4)

	assert.Equal(t, 4, utf8.RuneCountInString(truncated))
	assert.Equal(t, "éééé", truncated)

	assert.Equal(t, "abc", TruncateRunes("abc", 10))
}
