// Package domain builds the prompts the reading companion sends to the
// generation service.
package domain

import (
	"fmt"
	"strings"
)

const appName = "Atheneum"

type Style string

const (
	StyleFiction    Style = "fiction"
	StyleNonFiction Style = "non-fiction"
	StyleTechnical  Style = "technical"
)

// ParseStyle falls back to fiction for anything it does not know.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleNonFiction:
		return StyleNonFiction
	case StyleTechnical:
		return StyleTechnical
	default:
		return StyleFiction
	}
}

type Length string

const (
	LengthQuick    Length = "quick"
	LengthStandard Length = "standard"
	LengthDetailed Length = "detailed"
)

func (l Length) Valid() bool {
	return l == LengthQuick || l == LengthStandard || l == LengthDetailed
}

// Prompt is one request to the generation service.
type Prompt struct {
	Text     string
	Grounded bool
}

type Anchors struct {
	Start string
	End   string
}

type SummaryRequest struct {
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	Anchors          Anchors
}

type RecallRequest struct {
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	StartAnchor      string
	Length           Length
}

type OrientationRequest struct {
	Title  string
	Author string
}

type ExplainRequest struct {
	SelectedText    string
	BookTitle       string
	BookAuthor      string
	ChapterName     string
	SurroundingText string
}

type FollowUpRequest struct {
	ExplainRequest
	PriorExplanation string
	Question         string
}

var styleInstructions = map[Style]string{
	StyleFiction: `**Structure your response as follows:**
1. **The Story So Far:** A bulleted list of the key plot points leading up to this exact moment. Focus on the chapters immediately preceding this one.
2. **Key Characters:** A bulleted list of 2-4 main characters and the situation each is in right now.
3. **Current Situation:** A single sentence setting the stage for what the reader is about to read next.`,
	StyleNonFiction: `**Structure your response as follows:**
1. **Core Arguments & Facts:** A bulleted list of the main points or arguments the author has made so far, with the key evidence or examples.
2. **Key Takeaways:** A bulleted list of 2-4 important takeaways from the recent chapters.
3. **Current Focus:** A single sentence on the topic the author is discussing now.`,
	StyleTechnical: `**Structure your response as follows:**
1. **Key Concepts & Definitions:** A bulleted list of the terms, concepts or methods introduced so far, weighted towards the most recent chapters.
2. **Core Processes:** A bulleted list of 2-4 processes, architectures or code structures the author has laid out.
3. **Current Focus:** A single sentence on the technical topic the author is explaining now.`,
}

var lengthInstructions = map[Length]string{
	LengthQuick:    "Respond in exactly 2 warm, engaging sentences.",
	LengthStandard: "Respond in 150-200 words of flowing, warm narrative prose.",
	LengthDetailed: "Respond in up to 400 words of rich, warm narrative prose.",
}

// SummaryPrompt asks for a recap of everything up to the end of the
// current chapter, using search grounding.
func SummaryPrompt(req SummaryRequest, style Style) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert literary assistant. The user is reading the book %q by %s.\n", req.Title, orUnknown(req.Author))
	b.WriteString("Use Google Search to find accurate summaries of this specific book so your answer is correct.\n\n")
	b.WriteString("**User's Current Position:**\n")
	fmt.Fprintf(&b, "- **Progress:** %s through the book\n", percent(req.Progress, 1))
	fmt.Fprintf(&b, "- **Chapters they have already finished:** %s\n", chapterList(req.PreviousChapters, "Unknown chapter history"))
	fmt.Fprintf(&b, "- **They just finished reading the chapter:** %s\n", orDefault(req.ChapterName, "Unknown"))
	if req.Anchors.Start != "" && req.Anchors.End != "" {
		fmt.Fprintf(&b, "- **The current chapter begins with:** \"%s...\"\n", req.Anchors.Start)
		fmt.Fprintf(&b, "- **The current chapter ends near:** \"%s...\"\n", req.Anchors.End)
	}
	b.WriteString("\n**Task:**\n")
	b.WriteString("Provide a detailed but concise summary of the events, facts or concepts leading up to exactly this point in the book.\n")
	fmt.Fprintf(&b, "Do NOT mention anything that happens after the chapter %q.\n\n", orDefault(req.ChapterName, "they just finished"))
	b.WriteString(styleInstructions[style])
	b.WriteString("\n\nKeep the total output under 400 words. Use Markdown (bold, bullet points).")
	return Prompt{Text: b.String(), Grounded: true}
}

// RecallPrompt asks for a narrative catch-up covering earlier chapters only.
func RecallPrompt(req RecallRequest) Prompt {
	length := req.Length
	if !length.Valid() {
		length = LengthStandard
	}
	chapter := orDefault(req.ChapterName, "an early section")
	var b strings.Builder
	fmt.Fprintf(&b, "You are a warm, enthusiastic reading companion for the %s app.\n\n", appName)
	fmt.Fprintf(&b, "The user is returning to read %q by %s after being away for a few days.\n", req.Title, orUnknown(req.Author))
	fmt.Fprintf(&b, "They are %s through the book.\n", percent(req.Progress, 0))
	fmt.Fprintf(&b, "Chapters they have already read: %s.\n", chapterList(req.PreviousChapters, "the beginning"))
	fmt.Fprintf(&b, "They were last reading chapter: %q.\n", chapter)
	if req.StartAnchor != "" {
		fmt.Fprintf(&b, "The last section they were reading started with: \"%s...\"\n", req.StartAnchor)
	}
	b.WriteString("\nWrite a friendly narrative recap that helps them remember where they left off, like a friend catching them up.\n\n")
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- Write in flowing PROSE. DO NOT use bullet points, headers or lists.\n")
	fmt.Fprintf(&b, "- DO NOT spoil anything that happens after %q. Only recap what has already happened.\n", chapter)
	b.WriteString("- DO NOT invent plot points. If unsure, stay vague and focus on tone and how the characters feel.\n")
	fmt.Fprintf(&b, "- %s\n", lengthInstructions[length])
	b.WriteString("- End with one short sentence of encouragement to jump back in.")
	return Prompt{Text: b.String()}
}

// OrientationPrompt introduces a book the reader has not started.
func OrientationPrompt(req OrientationRequest) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a warm, enthusiastic reading companion for the %s app.\n\n", appName)
	fmt.Fprintf(&b, "The user is about to start reading %q by %s for the very first time.\n\n", req.Title, orUnknown(req.Author))
	b.WriteString("Write a short, enticing orientation that sets the scene before they begin.\n\n")
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- Write in flowing PROSE. DO NOT use bullet points, headers or lists.\n")
	b.WriteString("- DO NOT reveal plot twists, endings or significant spoilers.\n")
	b.WriteString("- Cover the genre and tone, the setting, and the experience readers can expect.\n")
	b.WriteString("- Keep it to 100-150 words.\n")
	b.WriteString("- End with one short sentence of excitement to encourage them to begin.")
	return Prompt{Text: b.String()}
}

// ExplainPrompt explains a selection in the context of the current scene.
func ExplainPrompt(req ExplainRequest) Prompt {
	var b strings.Builder
	writeExplainHeader(&b, req)
	b.WriteString("\nExplain this selection in a way that is useful to this reader at this moment.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("- Explain what it means in the context of the scene, characters, themes and tone of the book.\n")
	b.WriteString("- For a word or phrase, give its meaning and its significance here.\n")
	b.WriteString("- For a concept, metaphor or reference, explain it and why the author used it.\n")
	b.WriteString("- Clear, warm prose. Maximum 200 words. No bullet points.\n")
	b.WriteString("- Do NOT spoil events after the current chapter.")
	return Prompt{Text: b.String()}
}

// FollowUpPrompt answers a question about an earlier explanation. It is
// stateless: the prior answer travels in the prompt.
func FollowUpPrompt(req FollowUpRequest) Prompt {
	var b strings.Builder
	writeExplainHeader(&b, req.ExplainRequest)
	fmt.Fprintf(&b, "\nYou already explained: %q\n\n", req.PriorExplanation)
	fmt.Fprintf(&b, "The reader now asks: %q\n\n", req.Question)
	b.WriteString("Answer the follow-up concisely in 100-150 words. Warm tone, plain prose. No bullet points. Do not spoil future events.")
	return Prompt{Text: b.String()}
}

func writeExplainHeader(b *strings.Builder, req ExplainRequest) {
	fmt.Fprintf(b, "You are an insightful literary companion inside the %s reading app.\n\n", appName)
	fmt.Fprintf(b, "The reader is reading %q by %s, currently in %q.\n\n", req.BookTitle, orUnknown(req.BookAuthor), orDefault(req.ChapterName, "an early chapter"))
	fmt.Fprintf(b, "They have selected the following text:\n%q\n", req.SelectedText)
	if req.SurroundingText != "" {
		fmt.Fprintf(b, "\nThe passage around the selection, for context:\n\"...%s...\"\n", req.SurroundingText)
	}
}

func chapterList(chapters []string, fallback string) string {
	if len(chapters) == 0 {
		return fallback
	}
	return strings.Join(chapters, ", ")
}

func percent(fraction float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, fraction*100)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func orUnknown(author string) string {
	return orDefault(author, "an unknown author")
}
