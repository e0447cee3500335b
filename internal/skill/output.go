package skill

import "github.com/pablasso/listo/internal/checklist"

// Intent is the classified meaning of one utterance.
type Intent string

// Intents understood by the checklist skill
const (
	IntentStart    Intent = "start"
	IntentComplete Intent = "complete"
	IntentSkip     Intent = "skip"
	IntentQuery    Intent = "query"
	IntentWait     Intent = "wait"
	IntentAbort    Intent = "abort"
	IntentReset    Intent = "reset"
	IntentYes      Intent = "yes"
	IntentNo       Intent = "no"
	IntentUnknown  Intent = "unknown"
)

// Input is one classified utterance. Text carries the checklist name for
// IntentStart.
type Input struct {
	Intent Intent
	Text   string
}

// ContinuationKind says what the next turn is expected to be.
type ContinuationKind string

// Continuation kinds
const (
	// KindInteraction routes the next turn to a running checklist.
	KindInteraction ContinuationKind = "interaction"
	// KindConfirm expects a yes or no about starting a checklist.
	KindConfirm ContinuationKind = "confirm"
)

// Continuation binds the next turn to a checklist. The checklist is
// referenced by ID so edits to the collection between turns cannot
// redirect it.
type Continuation struct {
	Kind        ContinuationKind `json:"kind"`
	ChecklistID string           `json:"checklistId"`
}

// Output is what gets spoken for a turn plus what can be said next. A nil
// Next ends the interaction.
type Output struct {
	Text          string
	Next          *Continuation
	KeepListening bool
}

func final(text string) Output {
	return Output{Text: text}
}

func interaction(text, id string, keepListening bool) Output {
	return Output{
		Text:          text,
		Next:          &Continuation{Kind: KindInteraction, ChecklistID: id},
		KeepListening: keepListening,
	}
}

func confirm(text, id string) Output {
	return Output{
		Text:          text,
		Next:          &Continuation{Kind: KindConfirm, ChecklistID: id},
		KeepListening: true,
	}
}

// fromReply attaches the continuation for checklist id unless the run is
// over.
func fromReply(r checklist.Reply, id string) Output {
	if r.Finished {
		return final(r.Text)
	}
	return interaction(r.Text, id, true)
}
