package cart

import (
	"log"
	"sync"
)

// HistoryLimit caps the recently viewed list.
const HistoryLimit = 5

// Record puts id at the front of ids, keeping at most HistoryLimit entries.
// An id already present stays where it is.
func Record(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	out := make([]string, 0, HistoryLimit)
	out = append(out, id)
	out = append(out, ids...)
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}

// History is the recently viewed product ids of one shopper.
type History struct {
	mu      sync.Mutex
	storage Storage[[]string]
	ids     []string
	logger  *log.Logger
}

func NewHistory(storage Storage[[]string], logger *log.Logger) *History {
	if logger == nil {
		logger = log.Default()
	}
	h := &History{storage: storage, logger: logger}
	ids, ok, err := storage.Load()
	switch {
	case err != nil:
		logger.Printf("history: could not load, starting empty: %v", err)
	case ok:
		if len(ids) > HistoryLimit {
			ids = ids[:HistoryLimit]
		}
		h.ids = ids
	}
	return h
}

// Record adds id and returns the updated list, most recent first.
func (h *History) Record(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := Record(h.ids, id)
	if len(next) != len(h.ids) || (len(next) > 0 && next[0] != h.ids[0]) {
		h.ids = next
		if err := h.storage.Save(h.ids); err != nil {
			h.logger.Printf("history: could not save: %v", err)
		}
	}
	return h.idsLocked()
}

// IDs returns a copy of the list.
func (h *History) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idsLocked()
}

func (h *History) idsLocked() []string {
	out := make([]string, len(h.ids))
	copy(out, h.ids)
	return out
}
