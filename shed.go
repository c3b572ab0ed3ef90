// shed.go
package shed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/shedtool/shed/internal/lockfile"
	"github.com/shedtool/shed/pkg/cache"
	"github.com/shedtool/shed/pkg/catalog"
	"github.com/shedtool/shed/pkg/manifest"
	"github.com/shedtool/shed/pkg/platform"
	"github.com/shedtool/shed/pkg/store"
)

// Options configures an Evaluator.
type Options struct {
	StoreRoot  string // local package store
	CacheDir   string // synced channel catalogs
	CacheURL   string // binary cache base URL
	ChannelURL string // channel registry base URL
	Channel    string // default channel when the manifest names none
	Platform   platform.Platform
	Logger     zerolog.Logger
}

// Evaluator turns a shell manifest into a realized, reproducible
// environment: resolve names to pins, realize pins into the store, derive
// the environment from the realized entries.
type Evaluator struct {
	opts  Options
	store *store.Store
	cache *cache.Client
	log   zerolog.Logger
}

// NewEvaluator creates an evaluator. The platform is detected when not set
// in opts.
func NewEvaluator(opts Options) (*Evaluator, error) {
	if opts.StoreRoot == "" {
		return nil, fmt.Errorf("store root is required")
	}
	if opts.Platform == "" {
		detected, err := platform.Detect()
		if err != nil {
			return nil, fmt.Errorf("detecting platform: %w", err)
		}
		opts.Platform = detected
	}

	return &Evaluator{
		opts:  opts,
		store: store.New(opts.StoreRoot),
		cache: cache.NewClient(opts.CacheURL, cache.Options{Logger: opts.Logger}),
		log:   opts.Logger,
	}, nil
}

// Store returns the evaluator's package store.
func (e *Evaluator) Store() *store.Store {
	return e.store
}

// Platform returns the platform being evaluated for.
func (e *Evaluator) Platform() platform.Platform {
	return e.opts.Platform
}

// Resolved is the outcome of resolving a manifest: every declared package
// pinned to an exact store artifact.
type Resolved struct {
	Manifest *manifest.Manifest
	Channel  string
	Platform platform.Platform
	Pins     map[string]lockfile.Pin

	// fromLock reports whether every pin came from an existing lockfile.
	fromLock bool
}

// Names returns the pinned package names, sorted.
func (r *Resolved) Names() []string {
	names := make([]string, 0, len(r.Pins))
	for name := range r.Pins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FullyLocked reports whether resolution used only lockfile pins.
func (r *Resolved) FullyLocked() bool {
	return r.fromLock
}

// ResolveMode controls how Resolve treats the lockfile.
type ResolveMode int

const (
	// ModeDefault prefers lockfile pins and falls back to the catalog.
	ModeDefault ResolveMode = iota
	// ModeFrozen errors on any package the lockfile does not pin.
	ModeFrozen
	// ModeUpdate ignores the lockfile and resolves everything from the
	// catalog.
	ModeUpdate
)

// Resolve pins every package the manifest declares. Existing lockfile pins
// are preferred; anything unpinned is resolved against the channel catalog.
// In frozen mode an unpinned package is an error instead.
func (e *Evaluator) Resolve(ctx context.Context, m *manifest.Manifest, mode ResolveMode) (*Resolved, error) {
	channel := m.Channel
	if channel == "" {
		channel = e.opts.Channel
	}
	if channel == "" {
		return nil, ErrNoChannel
	}

	res := &Resolved{
		Manifest: m,
		Channel:  channel,
		Platform: e.opts.Platform,
		Pins:     make(map[string]lockfile.Pin, len(m.Inputs())),
		fromLock: true,
	}

	var lock *lockfile.File
	if mode != ModeUpdate {
		l, err := lockfile.Load(lockfile.PathIn(m.Dir))
		if err != nil && !errors.Is(err, lockfile.ErrNotFound) {
			return nil, err
		}
		lock = l
	}
	if lock != nil && !lock.Matches(channel, e.opts.Platform.String()) {
		e.log.Debug().
			Str("lock_channel", lock.Channel).
			Str("lock_platform", lock.Platform).
			Msg("ignoring lockfile for different channel or platform")
		lock = nil
	}

	var cat *catalog.Catalog
	for _, name := range m.Inputs() {
		if lock != nil {
			if pin, ok := lock.Pin(name); ok {
				res.Pins[name] = pin
				continue
			}
		}
		if mode == ModeFrozen {
			return nil, &Error{Op: "resolve", Package: name, Err: ErrFrozen}
		}

		res.fromLock = false
		if cat == nil {
			var err error
			if cat, err = e.loadCatalog(ctx, channel); err != nil {
				return nil, err
			}
		}
		artifact, err := cat.Resolve(name, e.opts.Platform)
		if err != nil {
			return nil, &Error{Op: "resolve", Package: name, Err: err}
		}
		res.Pins[name] = lockfile.Pin{
			NameVersion: artifact.NameVersion,
			StoreHash:   artifact.StoreHash,
			Outputs:     artifact.Outputs,
		}
	}

	return res, nil
}

// loadCatalog loads the channel catalog from the local cache, syncing it
// from the channel registry on first use.
func (e *Evaluator) loadCatalog(ctx context.Context, channel string) (*catalog.Catalog, error) {
	path := catalog.Path(e.opts.CacheDir, channel)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if e.opts.ChannelURL == "" {
			return nil, fmt.Errorf("channel %s not synced and no channel registry configured", channel)
		}
		e.log.Info().Str("channel", channel).Msg("syncing channel catalog")
		if _, err := catalog.Sync(ctx, e.cache.HTTPClient(), e.opts.ChannelURL, channel, e.opts.CacheDir); err != nil {
			return nil, err
		}
	}
	return catalog.Load(path)
}

// WriteLock writes the resolution as shell.lock next to the manifest.
func (e *Evaluator) WriteLock(res *Resolved) error {
	lock := lockfile.New(res.Channel, res.Platform.String())
	for name, pin := range res.Pins {
		lock.Set(name, pin)
	}
	return lock.Write(lockfile.PathIn(res.Manifest.Dir))
}

// Realize fetches every pinned package that is not yet present in the
// store. The store writer lock is held for the duration.
func (e *Evaluator) Realize(ctx context.Context, res *Resolved) error {
	missing := make([]string, 0, len(res.Pins))
	for _, name := range res.Names() {
		pin := res.Pins[name]
		if !e.store.Has(pin.StoreHash, pin.NameVersion) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	release, err := e.store.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, name := range missing {
		pin := res.Pins[name]
		// Re-check under the lock; another process may have realized it.
		if e.store.Has(pin.StoreHash, pin.NameVersion) {
			continue
		}
		e.log.Info().Str("package", name).Str("version", pin.NameVersion).Msg("realizing")
		entry := e.store.Entry(pin.StoreHash, pin.NameVersion)
		if err := e.cache.Fetch(ctx, pin.StoreHash, entry.Path); err != nil {
			return &Error{Op: "realize", Package: name, Err: err}
		}
	}
	return nil
}

// entry returns the store entry for a pinned package, which must have been
// realized.
func (e *Evaluator) entry(res *Resolved, name string) (store.Entry, error) {
	pin, ok := res.Pins[name]
	if !ok {
		return store.Entry{}, &Error{Op: "lookup", Package: name, Err: fmt.Errorf("package not pinned")}
	}
	if !e.store.Has(pin.StoreHash, pin.NameVersion) {
		return store.Entry{}, &Error{Op: "lookup", Package: name, Err: ErrNotRealized}
	}
	return e.store.Entry(pin.StoreHash, pin.NameVersion), nil
}
