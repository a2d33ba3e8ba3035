// Package dialog runs the conversational flow that turns user messages into saved preferences.
//
// The flow is a finite state machine with phases Extracting, AwaitingLocation, Refining,
// Confirming and Done. Transition is pure: the Engine performs extraction, city lookup,
// persistence and session storage around it.
package dialog

import (
	"strings"

	"github.com/umputun/kleinwatch/pkg/domain"
)

// Phase of a dialog
type Phase int

// dialog phases
const (
	PhaseExtracting Phase = iota
	PhaseAwaitingLocation
	PhaseRefining
	PhaseConfirming
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseExtracting:
		return "extracting"
	case PhaseAwaitingLocation:
		return "awaiting_location"
	case PhaseRefining:
		return "refining"
	case PhaseConfirming:
		return "confirming"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// State is the per-user dialog state kept between messages
type State struct {
	Phase Phase              `json:"phase"`
	Draft *domain.Preference `json:"draft,omitempty"`
}

// Extraction is a draft resolved against reference data.
// Nil prices mean the text didn't mention a price, zero TimeWindow means no window.
type Extraction struct {
	Location   domain.Location
	Category   domain.Category
	PriceFrom  *int
	PriceTo    *int
	TimeWindow int
}

// Empty reports whether nothing usable was extracted
func (e Extraction) Empty() bool {
	return e.Location == (domain.Location{}) && e.Category == (domain.Category{}) &&
		e.PriceFrom == nil && e.PriceTo == nil && e.TimeWindow == 0
}

// Input is one user message with the results of effects performed for it
type Input struct {
	Text       string
	Extraction *Extraction      // set for phases that extract from text
	Location   *domain.Location // set in AwaitingLocation when the city is known
}

// Output of a transition. Save asks the caller to persist the preference.
type Output struct {
	Message  string
	Save     *domain.Preference
	Complete bool
}

// user facing messages
const (
	msgAskLocation     = "I found your search criteria, but no location was specified. In which city would you like to search?"
	msgAskCity         = "In which city would you like to search?"
	msgUnknownCity     = "I couldn't find that city. Please try again with a different city name:"
	msgAskCategory     = "What are you looking for? (e.g., 'Sofa', 'Schreibtischstuhl', 'Xbox Controller')"
	msgAskPrice        = "What's your price range? (e.g., 'max 50 EUR', 'verschenken', 'bis 100 EUR')"
	msgNotUnderstood   = "Sorry, I couldn't process your request. Please try again with a different description."
	msgRefineUnclear   = "I didn't understand that. Please try: 'save', 'location', 'category', 'price', or describe your changes clearly."
	msgNoCategory      = "I still don't know what you are looking for. Please describe the item, e.g. 'Sofa' or 'Xbox Controller':"
	msgSaved           = "Preference saved successfully!"
	msgSaveFailed      = "Error saving preference. Please try again."
	msgCancelled       = "Preference cancelled."
	msgDescribeAgain   = "Please describe your search again with any changes:"
	msgConfirmQuestion = "Please answer with 'yes' to save, 'no' to cancel, or 'edit' to modify."
)

var (
	refineSave     = keywords("save", "ok", "yes", "ja", "speichern")
	refineLocation = keywords("location", "stadt", "ort")
	refineCategory = keywords("category", "kategorie")
	refinePrice    = keywords("price", "preis")
	confirmYes     = keywords("yes", "y", "ja", "save", "speichern")
	confirmNo      = keywords("no", "n", "nein", "cancel", "abbrechen")
	confirmEdit    = keywords("edit", "change", "modify", "aendern", "ändern")
	refineKeywords = []map[string]bool{refineSave, refineLocation, refineCategory, refinePrice}
)

// NeedsExtraction reports whether the text has to go through the extractor in the given state
func NeedsExtraction(s State, text string) bool {
	switch s.Phase {
	case PhaseExtracting, PhaseDone:
		return true
	case PhaseRefining:
		if s.Draft == nil {
			return true
		}
		word := normalize(text)
		for _, kw := range refineKeywords {
			if kw[word] {
				return false
			}
		}
		return true
	case PhaseConfirming:
		return s.Draft == nil
	default:
		return false
	}
}

// Transition computes the next state and the reply for one message
func Transition(s State, in Input) (State, Output) {
	switch s.Phase {
	case PhaseAwaitingLocation:
		return awaitLocation(s, in)
	case PhaseRefining:
		if s.Draft == nil {
			return extract(in)
		}
		return refine(s, in)
	case PhaseConfirming:
		if s.Draft == nil {
			return extract(in)
		}
		return confirm(s, in)
	default: // extracting, or a finished dialog starting over
		return extract(in)
	}
}

func extract(in Input) (State, Output) {
	if in.Extraction == nil || in.Extraction.Empty() {
		return State{Phase: PhaseExtracting}, Output{Message: msgNotUnderstood}
	}

	ex := in.Extraction
	draft := &domain.Preference{
		Location:   ex.Location,
		Category:   ex.Category,
		Price:      domain.PriceRange{From: deref(ex.PriceFrom), To: deref(ex.PriceTo)},
		TimeWindow: ex.TimeWindow,
	}
	if draft.TimeWindow <= 0 {
		draft.TimeWindow = domain.DefaultTimeWindow
	}

	if draft.Location.CityID == "" {
		return State{Phase: PhaseAwaitingLocation, Draft: draft}, Output{Message: msgAskLocation}
	}
	return State{Phase: PhaseRefining, Draft: draft}, Output{Message: refineMessage("I found the following search preferences:", draft, true)}
}

func awaitLocation(s State, in Input) (State, Output) {
	if in.Location == nil || in.Location.CityID == "" {
		return s, Output{Message: msgUnknownCity}
	}
	draft := clonePref(s.Draft)
	draft.Location = *in.Location
	return State{Phase: PhaseRefining, Draft: draft},
		Output{Message: refineMessage("Great! Updated search preferences:", draft, false)}
}

func refine(s State, in Input) (State, Output) {
	word := normalize(in.Text)
	switch {
	case refineSave[word]:
		if s.Draft.Category.ID() == "" {
			return s, Output{Message: msgNoCategory}
		}
		return State{Phase: PhaseConfirming, Draft: s.Draft},
			Output{Message: "Final confirmation:\n\n" + s.Draft.Summary() + "\n\nSave this preference? (yes/no)"}
	case refineLocation[word]:
		return State{Phase: PhaseAwaitingLocation, Draft: s.Draft}, Output{Message: msgAskCity}
	case refineCategory[word]:
		return s, Output{Message: msgAskCategory}
	case refinePrice[word]:
		return s, Output{Message: msgAskPrice}
	}

	if in.Extraction == nil || in.Extraction.Empty() {
		return s, Output{Message: msgRefineUnclear}
	}

	draft := merge(s.Draft, *in.Extraction)
	return State{Phase: PhaseRefining, Draft: draft},
		Output{Message: refineMessage("Updated search preferences:", draft, true)}
}

func confirm(s State, in Input) (State, Output) {
	word := normalize(in.Text)
	switch {
	case confirmYes[word]:
		return State{Phase: PhaseDone}, Output{Message: msgSaved, Save: clonePref(s.Draft), Complete: true}
	case confirmNo[word]:
		return State{Phase: PhaseDone}, Output{Message: msgCancelled, Complete: true}
	case confirmEdit[word]:
		return State{Phase: PhaseExtracting}, Output{Message: msgDescribeAgain}
	default:
		return s, Output{Message: msgConfirmQuestion}
	}
}

// merge applies the extracted values over the draft, empty values keep the existing ones
func merge(p *domain.Preference, ex Extraction) *domain.Preference {
	res := clonePref(p)
	if ex.Location.CityID != "" {
		res.Location = ex.Location
	}
	if ex.Category.ID() != "" {
		res.Category = ex.Category
	}
	if ex.PriceFrom != nil || ex.PriceTo != nil {
		res.Price = domain.PriceRange{From: deref(ex.PriceFrom), To: deref(ex.PriceTo)}
	}
	if ex.TimeWindow > 0 {
		res.TimeWindow = ex.TimeWindow
	}
	return res
}

func refineMessage(header string, p *domain.Preference, withLocation bool) string {
	var sb strings.Builder
	sb.WriteString(header + "\n\n" + p.Summary() + "\n\nWould you like to:\n")
	sb.WriteString("• Type 'save' to save this preference\n")
	if withLocation {
		sb.WriteString("• Type 'location' to change the location\n")
	}
	sb.WriteString("• Type 'category' to change the category\n")
	sb.WriteString("• Type 'price' to change the price\n")
	sb.WriteString("• Or describe any changes you'd like to make")
	return sb.String()
}

func clonePref(p *domain.Preference) *domain.Preference {
	if p == nil {
		return &domain.Preference{TimeWindow: domain.DefaultTimeWindow}
	}
	res := *p
	res.SentIDs = nil
	return &res
}

func keywords(words ...string) map[string]bool {
	res := make(map[string]bool, len(words))
	for _, w := range words {
		res[w] = true
	}
	return res
}

func normalize(text string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!?"))
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
