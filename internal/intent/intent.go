// Package intent turns a typed utterance into a skill input using simple
// keyword sentences.
package intent

import (
	"regexp"
	"strings"

	"github.com/pablasso/listo/internal/skill"
)

var (
	startPattern   = regexp.MustCompile(`^(?:please )?(?:start|begin|run|open|go through|resume|continue)(?: with)?(?: the| my)?(?: (.*))?$`)
	restartPattern = regexp.MustCompile(`^(?:please )?(?:restart|reset)(?: the| my)?(?: (.*))?$`)
)

// negations stop a sentence like "not done yet" from completing an item.
var negations = []string{"not", "isn't", "aren't", "haven't", "hasn't", "didn't", "never"}

// vagueNames after "restart" refer to the current checklist.
var vagueNames = map[string]bool{"again": true, "it": true, "this": true, "that": true, "this one": true, "everything": true}

// phrases are checked in order, so multi-word phrases that contain a
// shorter keyword come first.
var phrases = []struct {
	intent skill.Intent
	words  []string
}{
	{skill.IntentReset, []string{"start over", "start again", "from the beginning", "restart", "reset"}},
	{skill.IntentWait, []string{"wait", "not yet", "hold on", "one moment", "just a second", "pause"}},
	{skill.IntentAbort, []string{"stop", "abort", "cancel", "quit", "exit", "that's all", "that is all", "enough"}},
	{skill.IntentSkip, []string{"skip", "later", "not now", "pass"}},
	{skill.IntentQuery, []string{"what's next", "what is next", "what comes next", "which one", "what's", "what", "repeat", "again", "say that", "which item", "current item"}},
	{skill.IntentComplete, []string{"done", "complete", "completed", "check", "checked", "finished", "next", "ok", "okay"}},
	{skill.IntentYes, []string{"yes", "yeah", "yep", "sure", "of course", "please do"}},
	{skill.IntentNo, []string{"no", "nope", "nah", "don't", "do not"}},
}

// Parse classifies an utterance. Anything that matches no sentence is
// IntentUnknown.
func Parse(utterance string) skill.Input {
	text := normalize(utterance)
	if text == "" {
		return skill.Input{Intent: skill.IntentUnknown}
	}

	if m := startPattern.FindStringSubmatch(text); m != nil && !isResetPhrase(text) {
		return skill.Input{Intent: skill.IntentStart, Text: checklistName(m[1])}
	}

	// "restart the groceries checklist" names a checklist, "restart" alone
	// restarts the current one.
	if m := restartPattern.FindStringSubmatch(text); m != nil {
		if name := checklistName(m[1]); name != "" && !isResetPhrase(name) && !vagueNames[name] {
			return skill.Input{Intent: skill.IntentStart, Text: name}
		}
	}

	for _, p := range phrases {
		for _, w := range p.words {
			if !containsPhrase(text, w) {
				continue
			}
			if p.intent == skill.IntentComplete && isNegated(text) {
				return skill.Input{Intent: skill.IntentWait}
			}
			return skill.Input{Intent: p.intent}
		}
	}
	return skill.Input{Intent: skill.IntentUnknown}
}

// checklistName drops the trailing "checklist" from "the groceries
// checklist".
func checklistName(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{"checklist", "check list"} {
		if s == suffix {
			return ""
		}
		s = strings.TrimSuffix(s, " "+suffix)
	}
	return strings.TrimSpace(s)
}

func isResetPhrase(text string) bool {
	for _, w := range phrases[0].words {
		if containsPhrase(text, w) {
			return true
		}
	}
	return false
}

func isNegated(text string) bool {
	for _, w := range negations {
		if containsPhrase(text, w) {
			return true
		}
	}
	return false
}

// containsPhrase matches whole words only, so "now" does not match "know".
func containsPhrase(text, phrase string) bool {
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', ';', ':':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
