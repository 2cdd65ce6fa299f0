package domain

import (
	"fmt"
	"strings"
)

// Definition is a dictionary entry for one word.
type Definition struct {
	Word     string
	Phonetic string
	Meanings []Meaning
}

type Meaning struct {
	PartOfSpeech string
	Senses       []Sense
}

type Sense struct {
	Text    string
	Example string
}

const maxSensesShown = 3

var wordPunctuation = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
	`"`, "", "'", "", "(", "", ")", "",
	"“", "", "”", "", "‘", "", "’", "",
)

// CleanWord strips surrounding space and punctuation from a selection.
func CleanWord(selection string) string {
	return strings.TrimSpace(wordPunctuation.Replace(strings.TrimSpace(selection)))
}

// Markdown renders the entry for the definition card, keeping the first few
// senses of each part of speech.
func (d Definition) Markdown() string {
	var sb strings.Builder
	sb.WriteString("## " + d.Word)
	if d.Phonetic != "" {
		sb.WriteString("  *" + d.Phonetic + "*")
	}
	sb.WriteString("\n")
	for _, m := range d.Meanings {
		if len(m.Senses) == 0 {
			continue
		}
		sb.WriteString("\n**" + m.PartOfSpeech + "**\n\n")
		for i, s := range m.Senses {
			if i == maxSensesShown {
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s.Text)
			if s.Example != "" {
				sb.WriteString("   > " + s.Example + "\n")
			}
		}
	}
	return sb.String()
}
