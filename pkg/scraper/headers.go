package scraper

import (
	"math/rand"
	"net/http"
)

var acceptLanguages = []string{
	"de-DE,de;q=0.9,en;q=0.8",
	"de-DE,de;q=0.9",
	"de,en-US;q=0.7,en;q=0.3",
	"de-AT,de;q=0.9,en;q=0.8",
	"en-US,en;q=0.9,de;q=0.8",
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// addBrowserHeaders makes listing page requests look like a regular browser navigation.
// userAgent overrides the random pick when set.
func addBrowserHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = userAgents[rand.Intn(len(userAgents))] //nolint:gosec // non-cryptographic randomness is fine for header variation
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Sec-Fetch-User", "?1")

	if rand.Float32() < 0.3 { //nolint:gosec // non-cryptographic randomness is fine
		req.Header.Set("DNT", "1")
	}
}
