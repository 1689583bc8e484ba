// Package prefs owns all persisted user state: preferences, reading history
// and saved articles. It is the only writer of those keys; everything else
// reads through the derived profile or the preference snapshot.
package prefs

import (
	"encoding/json"

	"newshub/internal/store"
)

// Storage keys. savedNews is a legacy alias kept readable for old data.
const (
	keyPreferences   = "userPreferences"
	keyHistory       = "readingHistory"
	keySavedArticles = "savedArticles"
	keySavedLegacy   = "savedNews"
)

type NotificationPrefs struct {
	Breaking     bool `json:"breaking"`
	Trending     bool `json:"trending"`
	Personalized bool `json:"personalized"`
}

type AccessibilityPrefs struct {
	FontSize      string `json:"fontSize"`
	HighContrast  bool   `json:"highContrast"`
	ReducedMotion bool   `json:"reducedMotion"`
}

// Preferences drives the personalization filter. Category and sentiment maps
// are allow-maps: a key explicitly set to false disables that value, a
// missing key allows it.
type Preferences struct {
	Categories          map[string]bool    `json:"categories"`
	SentimentFilter     map[string]bool    `json:"sentimentFilter"`
	MinCredibilityScore int                `json:"minCredibilityScore"`
	HideHighBias        bool               `json:"hideHighBias"`
	PreferredSources    []string           `json:"preferredSources"`
	Language            string             `json:"language"`
	ReadingMode         string             `json:"readingMode"`
	Notifications       NotificationPrefs  `json:"notifications"`
	Accessibility       AccessibilityPrefs `json:"accessibility"`
}

// Defaults returns the baseline preferences applied under any persisted
// override.
func Defaults() Preferences {
	return Preferences{
		Categories: map[string]bool{
			"general":       true,
			"business":      true,
			"technology":    true,
			"entertainment": true,
			"sports":        true,
			"health":        true,
			"science":       true,
			"nation":        true,
			"world":         true,
		},
		SentimentFilter: map[string]bool{
			"positive": true,
			"negative": true,
			"neutral":  true,
		},
		MinCredibilityScore: 50,
		HideHighBias:        false,
		PreferredSources:    []string{},
		Language:            "en",
		ReadingMode:         "normal",
		Notifications: NotificationPrefs{
			Breaking:     true,
			Trending:     true,
			Personalized: true,
		},
		Accessibility: AccessibilityPrefs{
			FontSize: "medium",
		},
	}
}

// merge decodes raw persisted preferences on top of the defaults. Decoding
// into a prefilled struct gives the required deep merge per top-level key:
// persisted map keys override individual default entries, persisted struct
// fields override individual defaults, and anything absent keeps its default.
func merge(raw []byte) Preferences {
	p := Defaults()
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Defaults()
	}
	return p
}

// loadPreferences reads preferences from the store, treating absent or
// corrupt data as "use defaults".
func loadPreferences(s store.PersistentStore) Preferences {
	raw, ok, err := s.Get(keyPreferences)
	if err != nil || !ok {
		return Defaults()
	}
	return merge(raw)
}
