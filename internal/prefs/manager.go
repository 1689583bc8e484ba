package prefs

import (
	"errors"
	"sync"
	"time"

	"newshub/internal/article"
	"newshub/internal/logger"
	"newshub/internal/profile"
	"newshub/internal/store"
)

// historyLimit caps reading history at the most recent entries; oldest are
// evicted first.
const historyLimit = 100

// ErrAlreadySaved reports a duplicate save, which is a no-op.
var ErrAlreadySaved = errors.New("article already saved")

// SavedArticle is a full article snapshot taken at save time.
type SavedArticle struct {
	article.Article
	SavedAtMs int64 `json:"savedAtMs"`
}

// Manager is the single owner of persisted user state. All mutation is
// user-triggered; the profile is rebuilt synchronously after every history
// change.
type Manager struct {
	mu      sync.RWMutex
	store   store.PersistentStore
	prefs   Preferences
	history []profile.Entry
	saved   []SavedArticle
	profile profile.Profile

	now func() time.Time
}

// NewManager loads existing state from the store. Corrupt or absent keys
// reset to defaults silently.
func NewManager(s store.PersistentStore) *Manager {
	m := &Manager{
		store: s,
		now:   time.Now,
	}

	m.prefs = loadPreferences(s)

	if _, err := store.GetJSON(s, keyHistory, &m.history); err != nil {
		logger.Warn("failed to load reading history", "err", err)
	}
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}

	if ok, err := store.GetJSON(s, keySavedArticles, &m.saved); err != nil {
		logger.Warn("failed to load saved articles", "err", err)
	} else if !ok {
		// Fall back to the legacy key; writes only ever target the new one.
		if _, err := store.GetJSON(s, keySavedLegacy, &m.saved); err != nil {
			logger.Warn("failed to load legacy saved articles", "err", err)
		}
	}

	m.profile = profile.Build(m.history)
	return m
}

// Preferences returns the current resolved preferences.
func (m *Manager) Preferences() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs
}

// UpdatePreferences applies raw preference JSON over the defaults and
// persists the result.
func (m *Manager) UpdatePreferences(raw []byte) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs = merge(raw)
	if err := store.SetJSON(m.store, keyPreferences, m.prefs); err != nil {
		return m.prefs, err
	}
	return m.prefs, nil
}

// ResetPreferences drops persisted preferences and restores defaults.
func (m *Manager) ResetPreferences() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefs = Defaults()
	return m.store.Delete(keyPreferences)
}

// Profile returns the profile derived from the current history.
func (m *Manager) Profile() profile.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// History returns a copy of the reading history, oldest first.
func (m *Manager) History() []profile.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]profile.Entry, len(m.history))
	copy(out, m.history)
	return out
}

// TrackView appends a history entry for a viewed article, trims to the cap,
// persists, and rebuilds the profile.
func (m *Manager) TrackView(a article.Article) (profile.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := profile.Entry{
		ArticleID:   a.ID,
		Category:    a.Category,
		Source:      a.Source,
		TimestampMs: m.now().UnixMilli(),
	}
	if a.Enrichment != nil && a.Enrichment.Sentiment != nil {
		entry.Sentiment = a.Enrichment.Sentiment.Type
	}

	m.history = append(m.history, entry)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}

	if err := store.SetJSON(m.store, keyHistory, m.history); err != nil {
		return entry, err
	}
	m.profile = profile.Build(m.history)
	return entry, nil
}

// UpdateReadTime backfills the read duration on the first history entry for
// the given article.
func (m *Manager) UpdateReadTime(articleID string, seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.history {
		if m.history[i].ArticleID == articleID {
			m.history[i].ReadTimeSeconds = seconds
			if err := store.SetJSON(m.store, keyHistory, m.history); err != nil {
				return err
			}
			m.profile = profile.Build(m.history)
			return nil
		}
	}
	return nil
}

// SaveArticle stores a snapshot of the article. Saving an already-saved
// article is a no-op that reports ErrAlreadySaved.
func (m *Manager) SaveArticle(a article.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.saved {
		if s.ID == a.ID {
			return ErrAlreadySaved
		}
	}

	m.saved = append(m.saved, SavedArticle{
		Article:   a,
		SavedAtMs: m.now().UnixMilli(),
	})
	return store.SetJSON(m.store, keySavedArticles, m.saved)
}

// UnsaveArticle removes a saved article by ID. Removing an unknown ID is a
// no-op.
func (m *Manager) UnsaveArticle(articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.saved[:0]
	for _, s := range m.saved {
		if s.ID != articleID {
			kept = append(kept, s)
		}
	}
	m.saved = kept
	return store.SetJSON(m.store, keySavedArticles, m.saved)
}

// SavedArticles returns a copy of the saved article snapshots.
func (m *Manager) SavedArticles() []SavedArticle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SavedArticle, len(m.saved))
	copy(out, m.saved)
	return out
}
