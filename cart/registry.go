package cart

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	cartPrefix    = "cart-"
	historyPrefix = "viewed-"
	fileSuffix    = ".json"
)

// Owner is one shopper's non-empty cart.
type Owner struct {
	UID   string `json:"uid"`
	State State  `json:"state"`
	Total int64  `json:"total"`
}

// Registry hands out one Cart and one History per owner uid. With a
// directory they persist as JSON files in it, otherwise in memory.
type Registry struct {
	dir    string
	logger *log.Logger

	mu        sync.Mutex
	carts     map[string]*Cart
	histories map[string]*History
}

func NewRegistry(dir string, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		dir:       dir,
		logger:    logger,
		carts:     make(map[string]*Cart),
		histories: make(map[string]*History),
	}
}

func (r *Registry) path(prefix, uid string) string {
	return filepath.Join(r.dir, prefix+base64.RawURLEncoding.EncodeToString([]byte(uid))+fileSuffix)
}

// Cart returns uid's cart, loading it on first use.
func (r *Registry) Cart(uid string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[uid]; ok {
		return c
	}
	var st Storage[State] = &MemoryStorage[State]{}
	if r.dir != "" {
		st = FileStorage[State]{Path: r.path(cartPrefix, uid)}
	}
	c := New(st, r.logger)
	r.carts[uid] = c
	return c
}

// History returns uid's viewed-products history, loading it on first use.
func (r *Registry) History(uid string) *History {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histories[uid]; ok {
		return h
	}
	var st Storage[[]string] = &MemoryStorage[[]string]{}
	if r.dir != "" {
		st = FileStorage[[]string]{Path: r.path(historyPrefix, uid)}
	}
	h := NewHistory(st, r.logger)
	r.histories[uid] = h
	return h
}

// Active lists owners whose cart is not empty, sorted by uid. Carts saved
// by earlier runs are loaded from the directory.
func (r *Registry) Active(ctx context.Context) ([]Owner, error) {
	uids, err := r.knownOwners()
	if err != nil {
		return nil, err
	}
	var owners []Owner
	for _, uid := range uids {
		state, err := r.Cart(uid).State(ctx)
		if err != nil {
			return nil, fmt.Errorf("cart of %s: %w", uid, err)
		}
		if state.Empty() {
			continue
		}
		owners = append(owners, Owner{UID: uid, State: state, Total: state.Total()})
	}
	return owners, nil
}

func (r *Registry) knownOwners() ([]string, error) {
	seen := make(map[string]bool)
	r.mu.Lock()
	for uid := range r.carts {
		seen[uid] = true
	}
	r.mu.Unlock()

	if r.dir != "" {
		entries, err := os.ReadDir(r.dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("list carts: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasPrefix(name, cartPrefix) || !strings.HasSuffix(name, fileSuffix) {
				continue
			}
			encoded := strings.TrimSuffix(strings.TrimPrefix(name, cartPrefix), fileSuffix)
			uid, err := base64.RawURLEncoding.DecodeString(encoded)
			if err != nil {
				continue
			}
			seen[string(uid)] = true
		}
	}

	uids := make([]string, 0, len(seen))
	for uid := range seen {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids, nil
}

// Close stops every cart goroutine.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		c.Close()
	}
}
