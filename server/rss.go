package server

import (
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/kleinwatch/pkg/feed"
)

const defaultRSSLimit = 50

// rssHandler serves the RSS feed of listings delivered to the user, newest first
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	sent, err := s.preferences.SentListings(r.Context(), userID, defaultRSSLimit)
	if err != nil {
		lgr.Printf("[ERROR] failed to get sent listings of %d for RSS: %v", userID, err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	entries := make([]feed.Entry, 0, len(sent))
	for _, sl := range sent {
		entries = append(entries, feed.Entry{Listing: sl.Listing, SentAt: sl.SentAt})
	}

	rss, err := s.generator.GenerateRSS(userID, entries)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
