package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/repository"
	"github.com/umputun/kleinwatch/pkg/validation"
)

// preferenceRequest is the body of a new preference, names are resolved against the catalog
type preferenceRequest struct {
	City        string `json:"city" validate:"required_without=State"`
	State       string `json:"state"`
	Category    string `json:"category" validate:"required_without=Subcategory"`
	Subcategory string `json:"subcategory"`
	PriceFrom   int    `json:"price_from" validate:"gte=0"`
	PriceTo     int    `json:"price_to" validate:"omitempty,gtefield=PriceFrom"`
	TimeWindow  int    `json:"time_window" validate:"omitempty,gte=3600,lte=7776000"` // up to 90 days
}

// preferenceResponse is a stored preference with its human summary
type preferenceResponse struct {
	domain.Preference
	Summary string `json:"summary"`
	Sent    int    `json:"sent"`
}

// preferenceDetails is a preference with the listings already delivered for it
type preferenceDetails struct {
	preferenceResponse
	Delivered []domain.Listing `json:"delivered"`
}

type dialogRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	if count, err := s.listings.CountListings(r.Context()); err == nil {
		status["listings"] = count
	} else {
		lgr.Printf("[WARN] failed to count listings: %v", err)
	}
	renderJSON(w, r, http.StatusOK, status)
}

// listPreferencesHandler returns all preferences of the user
func (s *Server) listPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	prefs, err := s.preferences.ListPreferences(r.Context(), userID)
	if err != nil {
		lgr.Printf("[ERROR] failed to list preferences of %d: %v", userID, err)
		renderError(w, r, errors.New("can't load preferences"), http.StatusInternalServerError)
		return
	}
	res := make([]preferenceResponse, 0, len(prefs))
	for _, p := range prefs {
		res = append(res, toResponse(p))
	}
	renderJSON(w, r, http.StatusOK, res)
}

// getPreferenceHandler returns one preference of the user with its delivered listings
func (s *Server) getPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	pref, err := s.preferences.GetPreference(r.Context(), userID, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		renderError(w, r, fmt.Errorf("preference %s not found", id), http.StatusNotFound)
		return
	case err != nil:
		lgr.Printf("[ERROR] failed to get preference %s of %d: %v", id, userID, err)
		renderError(w, r, errors.New("can't load preference"), http.StatusInternalServerError)
		return
	}

	delivered, err := s.listings.GetListings(r.Context(), pref.SentList())
	if err != nil {
		lgr.Printf("[ERROR] failed to load delivered listings of %s: %v", id, err)
		renderError(w, r, errors.New("can't load delivered listings"), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, preferenceDetails{preferenceResponse: toResponse(pref), Delivered: delivered})
}

// addPreferenceHandler validates the request, resolves names and stores the preference
func (s *Server) addPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	loc := s.catalog.ResolveLocation(req.City, req.State)
	if loc.ID() == "" {
		renderError(w, r, &validation.Error{Fields: map[string]string{"city": "is unknown"}}, http.StatusBadRequest)
		return
	}
	cat := s.catalog.FindCategory(req.Category, req.Subcategory)
	if cat.ID() == "" {
		renderError(w, r, &validation.Error{Fields: map[string]string{"category": "is unknown"}}, http.StatusBadRequest)
		return
	}

	pref, err := s.preferences.AddPreference(r.Context(), domain.Preference{
		UserID:     userID,
		Location:   loc,
		Category:   cat,
		Price:      domain.PriceRange{From: req.PriceFrom, To: req.PriceTo},
		TimeWindow: req.TimeWindow,
	})
	if err != nil {
		lgr.Printf("[ERROR] failed to add preference for %d: %v", userID, err)
		renderError(w, r, errors.New("can't save preference"), http.StatusInternalServerError)
		return
	}
	lgr.Printf("[INFO] added preference %s for %d: %s / %s / %s", pref.ID, userID,
		pref.Location.Display(), pref.Category.Display(), pref.Price.Display())
	renderJSON(w, r, http.StatusCreated, toResponse(pref))
}

// deletePreferenceHandler removes one preference of the user
func (s *Server) deletePreferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	err := s.preferences.DeletePreference(r.Context(), userID, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		renderError(w, r, fmt.Errorf("preference %s not found", id), http.StatusNotFound)
	case err != nil:
		lgr.Printf("[ERROR] failed to delete preference %s of %d: %v", id, userID, err)
		renderError(w, r, errors.New("can't delete preference"), http.StatusInternalServerError)
	default:
		renderJSON(w, r, http.StatusOK, map[string]any{"deleted": 1})
	}
}

// deleteAllPreferencesHandler removes all preferences of the user
func (s *Server) deleteAllPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	n, err := s.preferences.DeleteAllPreferences(r.Context(), userID)
	if err != nil {
		lgr.Printf("[ERROR] failed to delete preferences of %d: %v", userID, err)
		renderError(w, r, errors.New("can't delete preferences"), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"deleted": n})
}

// dialogHandler passes one user message to the dialog
func (s *Server) dialogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	var req dialogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	reply, err := s.dialog.Handle(r.Context(), userID, req.Text)
	if err != nil {
		lgr.Printf("[ERROR] dialog of %d failed: %v", userID, err)
		renderError(w, r, errors.New("dialog failed"), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, reply)
}

// cancelDialogHandler drops the dialog state of the user
func (s *Server) cancelDialogHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	if err := s.dialog.Cancel(r.Context(), userID); err != nil {
		lgr.Printf("[ERROR] failed to cancel dialog of %d: %v", userID, err)
		renderError(w, r, errors.New("can't cancel dialog"), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userParam parses the user path value, renders 400 on a bad one
func userParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.PathValue("user"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid user id %q", r.PathValue("user")), http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}

func toResponse(p domain.Preference) preferenceResponse {
	return preferenceResponse{Preference: p, Summary: p.Summary(), Sent: len(p.SentIDs)}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
