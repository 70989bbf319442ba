package session

import (
	"net/http"
	"time"
)

// record is what gets persisted: the backend's cookies, nothing else. The
// access token and profile are always fetched fresh.
type record struct {
	Cookies []storedCookie `json:"cookies"`
	SavedAt time.Time      `json:"savedAt"`
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newRecord(cookies []*http.Cookie) record {
	rec := record{SavedAt: time.Now().UTC()}
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		rec.Cookies = append(rec.Cookies, storedCookie{Name: c.Name, Value: c.Value})
	}
	return rec
}

func (r record) httpCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return out
}
