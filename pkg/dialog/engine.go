package dialog

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/kleinwatch/pkg/domain"
)

//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Engine drives dialogs for many users. It loads the session, performs the effects the
// current phase needs (text extraction, city lookup), runs Transition and stores the result.
// A saved preference ends the dialog and removes the session.
type Engine struct {
	extractor Extractor
	catalog   Catalog
	store     Store
	sessions  Sessions
}

// Extractor turns free text into a draft preference
type Extractor interface {
	Extract(ctx context.Context, text string) domain.Draft
}

// Catalog resolves names into reference ids
type Catalog interface {
	FindCity(name string) (domain.Location, bool)
	ResolveLocation(city, state string) domain.Location
	FindCategory(category, subcategory string) domain.Category
}

// Store persists confirmed preferences
type Store interface {
	AddPreference(ctx context.Context, pref domain.Preference) (domain.Preference, error)
}

// Sessions keeps dialog state between messages
type Sessions interface {
	Load(ctx context.Context, userID int64) (State, bool, error)
	Save(ctx context.Context, userID int64, state State) error
	Delete(ctx context.Context, userID int64) error
}

// Params for NewEngine
type Params struct {
	Extractor Extractor
	Catalog   Catalog
	Store     Store
	Sessions  Sessions
}

// Reply is the answer to one user message
type Reply struct {
	Message  string `json:"message"`
	Phase    string `json:"phase"`
	Complete bool   `json:"complete"`
}

// NewEngine makes a dialog engine, in-memory sessions are used if none provided
func NewEngine(params Params) *Engine {
	if params.Sessions == nil {
		params.Sessions = NewMemorySessions(0)
	}
	return &Engine{extractor: params.Extractor, catalog: params.Catalog, store: params.Store, sessions: params.Sessions}
}

// Handle advances the user's dialog with one message
func (e *Engine) Handle(ctx context.Context, userID int64, text string) (Reply, error) {
	state, ok, err := e.sessions.Load(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session for %d: %w", userID, err)
	}
	if !ok {
		state = State{Phase: PhaseExtracting}
	}

	in := Input{Text: text}
	switch {
	case state.Phase == PhaseAwaitingLocation:
		if loc, found := e.catalog.FindCity(text); found {
			in.Location = &loc
		}
	case NeedsExtraction(state, text):
		ex := e.extract(ctx, text)
		in.Extraction = &ex
	}

	next, out := Transition(state, in)
	lgr.Printf("[DEBUG] dialog %d: %s -> %s", userID, state.Phase, next.Phase)

	if out.Save != nil {
		pref := *out.Save
		pref.UserID = userID
		saved, saveErr := e.store.AddPreference(ctx, pref)
		if saveErr != nil {
			lgr.Printf("[WARN] failed to save preference for %d: %v", userID, saveErr)
			return Reply{Message: msgSaveFailed, Phase: state.Phase.String()}, nil
		}
		lgr.Printf("[INFO] saved preference %s for %d, %s / %s", saved.ID, userID,
			saved.Location.Display(), saved.Category.Display())
	}

	if next.Phase == PhaseDone {
		if err := e.sessions.Delete(ctx, userID); err != nil {
			return Reply{}, fmt.Errorf("delete session for %d: %w", userID, err)
		}
	} else if err := e.sessions.Save(ctx, userID, next); err != nil {
		return Reply{}, fmt.Errorf("save session for %d: %w", userID, err)
	}

	return Reply{Message: out.Message, Phase: next.Phase.String(), Complete: out.Complete}, nil
}

// Cancel drops the user's dialog
func (e *Engine) Cancel(ctx context.Context, userID int64) error {
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("cancel dialog for %d: %w", userID, err)
	}
	return nil
}

// extract runs the extractor and resolves names against the catalog
func (e *Engine) extract(ctx context.Context, text string) Extraction {
	d := e.extractor.Extract(ctx, text)
	if d.Empty() {
		return Extraction{}
	}
	return Extraction{
		Location:   e.catalog.ResolveLocation(d.City, d.State),
		Category:   e.catalog.FindCategory(d.Category, d.Subcategory),
		PriceFrom:  d.PriceFrom,
		PriceTo:    d.PriceTo,
		TimeWindow: d.TimeWindow,
	}
}
