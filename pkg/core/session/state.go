// Package session holds the per-visitor extraction state: the current input text
// and at most one cached result.
//
// Transitions are plain functions from State to State so they can be tested
// without a store or a gateway; Manager adds persistence and the one-in-flight
// rule on top.
package session

import (
	"strings"
	"time"

	"kpi_extractor/pkg/models"
)

// Phase is where a session sits in the form lifecycle.
type Phase string

const (
	PhaseEmpty      Phase = "empty"      // no input, no result
	PhaseEditing    Phase = "editing"    // input present, no result shown yet
	PhaseExtracting Phase = "extracting" // gateway call in flight
	PhaseReady      Phase = "ready"      // a result is cached and displayed
)

// SampleText is the built-in earnings article offered by "Use Sample Text".
// The sentences are joined exactly as shipped, including the missing spaces.
const SampleText = "Tesla reported third-quarter earnings Wednesday that topped analysts’ estimates even as revenue came in just shy of expectations. " +
	"The stock popped roughly 17% in Thursday morning trading." +
	"Here’s what the company reported compared with what Wall Street was expecting, based on a survey of analysts by LSEG:" +
	"Earnings per share: 72 cents, adjusted vs. 58 cents expected" +
	"Revenue: $25.18 billion vs. $25.37 billion expected" +
	"Revenue increased 8% in the quarter from $23.35 billion a year earlier. Net income rose to about $2.17 billion, or 62 cents a share, from $1.85 billion, or 53 cents a share, a year ago." +
	"Profit margins were bolstered by $739 million in automotive regulatory credit revenue during the quarter."

// State is one session's cache. Result is nil until an extraction succeeds.
type State struct {
	ID        string                   `json:"id"`
	Input     string                   `json:"input"`
	Result    *models.ExtractionResult `json:"result"`
	Phase     Phase                    `json:"phase"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// New returns the initial state for id.
func New(id string) State {
	return State{ID: id, Phase: PhaseEmpty}
}

// HasResult reports whether a non-empty result should be displayed.
func (s State) HasResult() bool {
	return s.Result != nil && !s.Result.Empty()
}

// Edit replaces the input text. A cached result survives editing and is not
// recomputed.
func Edit(s State, text string) State {
	s.Input = text
	switch {
	case s.Result != nil:
		s.Phase = PhaseReady
	case text == "":
		s.Phase = PhaseEmpty
	default:
		s.Phase = PhaseEditing
	}
	return s
}

// LoadSample swaps in SampleText and clears any cached result, from any phase.
func LoadSample(s State) State {
	s.Input = SampleText
	s.Result = nil
	s.Phase = PhaseEditing
	return s
}

// BeginExtract guards the extract action. Blank input is refused with
// ErrBlankInput; the returned state is then Editing with the result untouched.
func BeginExtract(s State) (State, error) {
	if strings.TrimSpace(s.Input) == "" {
		s.Phase = PhaseEditing
		return s, ErrBlankInput
	}
	s.Phase = PhaseExtracting
	return s, nil
}

// CompleteExtract stores a successful result, replacing any earlier one.
func CompleteExtract(s State, r *models.ExtractionResult) State {
	s.Result = r.Clone()
	if s.Result == nil {
		s.Result = &models.ExtractionResult{}
	}
	s.Phase = PhaseReady
	return s
}

// FailExtract returns to Editing. The previous result, if any, is kept as it was.
func FailExtract(s State) State {
	s.Phase = PhaseEditing
	return s
}
