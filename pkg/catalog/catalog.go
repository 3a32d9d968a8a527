// Package catalog implements the engine's vocbase catalog:
// a per-database registry of collections keyed by id and name, guarded
// by a read/write lock, plus the collection status state machine and
// parameter-file persistence.
package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/latticedb/lattice/pkg/events"
	"github.com/latticedb/lattice/pkg/log"
	"github.com/latticedb/lattice/pkg/store"
	"github.com/latticedb/lattice/pkg/trierr"
)

// CollectionType is a collection's immutable kind.
type CollectionType int

const (
	Document CollectionType = iota
	Edge
)

// Status is a collection's lifecycle state.
type Status int

const (
	Corrupted Status = iota
	Unloaded
	Loaded
	Unloading
	Deleted
)

func (s Status) String() string {
	switch s {
	case Corrupted:
		return "corrupted"
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Unloading:
		return "unloading"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

const (
	maxNameLen = 64
	maxPathLen = 512
)

// Defaults holds the configuration that seeds new collections and the
// vocbase itself; loaded from YAML by pkg/config.
type Defaults struct {
	DefaultMaximalSize int64 `yaml:"defaultMaximalSize"`
	WaitForSync        bool  `yaml:"waitForSync"`
	AuthenticationOn   bool  `yaml:"authenticationOn"`
}

// Collection is one catalog entry: a named, typed container whose
// status and name are protected by its own read/write lock.
type Collection struct {
	mu sync.RWMutex

	cid  int64
	typ  CollectionType
	name string
	path string

	status Status

	maximalSize int64
	waitForSync bool
	isSystem    bool

	canDrop   bool
	canUnload bool
	canRename bool

	pins int
}

// CID returns the collection's dense id.
func (c *Collection) CID() int64 { return c.cid }

// Type returns the collection's immutable kind.
func (c *Collection) Type() CollectionType { return c.typ }

// Name returns the collection's current name.
func (c *Collection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Path returns the collection's on-disk directory.
func (c *Collection) Path() string { return c.path }

// Status returns the collection's current lifecycle state.
func (c *Collection) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Vocbase is a database: a named set of collections with a shared
// catalog, authentication state, and a tick counter used to mint fresh
// collection ids. Each Vocbase keeps its own counter; two Vocbase
// values in one process do not share one.
type Vocbase struct {
	Path     string
	Defaults Defaults

	// Events, when non-nil, receives a published event on every
	// collection lifecycle transition. Wiring one in is optional;
	// the zero value publishes nothing.
	Events *events.Broker

	mu       sync.RWMutex
	byID     map[int64]*Collection
	byName   map[string]*Collection
	deadList []*Collection

	authMu sync.Mutex
	auth   map[string]string

	tick int64

	store *store.Store
}

func (v *Vocbase) publish(evType events.EventType, c *Collection, msg string) {
	if v.Events == nil {
		return
	}
	v.Events.Publish(&events.Event{
		Type:    evType,
		Message: msg,
		Metadata: map[string]string{
			"cid":  fmt.Sprintf("%d", c.cid),
			"name": c.Name(),
		},
	})
}

// New constructs an empty vocbase rooted at path, with no durable
// backing store (suitable for tests and ephemeral databases).
func New(path string, defaults Defaults) *Vocbase {
	return &Vocbase{
		Path:     path,
		Defaults: defaults,
		byID:     make(map[int64]*Collection),
		byName:   make(map[string]*Collection),
		auth:     make(map[string]string),
	}
}

// Open constructs a vocbase backed by a bbolt store under path,
// restoring collection records and the tick high-water mark persisted
// from a previous run. Credentials stored by SetAuth are written to the
// store but are not read back into the auth map on Open.
func Open(path string, defaults Defaults) (*Vocbase, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open store: %w", err)
	}

	v := &Vocbase{
		Path:     path,
		Defaults: defaults,
		byID:     make(map[int64]*Collection),
		byName:   make(map[string]*Collection),
		auth:     make(map[string]string),
		store:    st,
	}

	if err := v.restore(); err != nil {
		st.Close()
		return nil, err
	}

	return v, nil
}

// Close releases the vocbase's durable store, if any.
func (v *Vocbase) Close() error {
	if v.store == nil {
		return nil
	}
	return v.store.Close()
}

// StoreHealthy reports whether the vocbase's durable store can still
// service a transaction. A vocbase opened with New (no durable store)
// is always healthy.
func (v *Vocbase) StoreHealthy() error {
	if v.store == nil {
		return nil
	}
	return v.store.Ping()
}

func (v *Vocbase) restore() error {
	tick, err := v.store.LoadTick()
	if err != nil {
		return fmt.Errorf("catalog: load tick: %w", err)
	}
	v.tick = tick

	records, err := v.store.ListCollections()
	if err != nil {
		return fmt.Errorf("catalog: list collections: %w", err)
	}

	for _, rec := range records {
		col := &Collection{
			cid:         rec.CID,
			typ:         CollectionType(rec.Type),
			name:        rec.Name,
			path:        rec.Path,
			status:      Status(rec.Status),
			maximalSize: rec.MaximalSize,
			waitForSync: rec.WaitForSync,
			isSystem:    rec.IsSystem,
			canDrop:     true,
			canUnload:   true,
			canRename:   true,
		}
		v.byID[col.cid] = col
		v.byName[col.name] = col
	}

	return nil
}

func (v *Vocbase) persist(c *Collection) {
	if v.store == nil {
		return
	}
	c.mu.RLock()
	rec := &store.CollectionRecord{
		CID:         c.cid,
		Name:        c.name,
		Type:        int(c.typ),
		Path:        c.path,
		Status:      int(c.status),
		MaximalSize: c.maximalSize,
		WaitForSync: c.waitForSync,
		IsSystem:    c.isSystem,
	}
	c.mu.RUnlock()

	if err := v.store.PutCollection(rec); err != nil {
		log.WithComponent("catalog").Error().Err(err).Int64("cid", c.cid).Msg("failed to persist collection record")
	}
}

// nextTick mints a fresh id, monotonic within this vocbase.
func (v *Vocbase) nextTick() int64 {
	return atomic.AddInt64(&v.tick, 1)
}

// Create registers a new collection named name under the catalog
// lock, assigning it a fresh cid. Returns trierr.DuplicateKey if the
// name is already registered.
func (v *Vocbase) Create(name string, typ CollectionType) (*Collection, error) {
	if len(name) == 0 || len(name) > maxNameLen {
		trierr.Set(trierr.IllegalState)
		return nil, fmt.Errorf("catalog: collection name length must be in (0, %d]", maxNameLen)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.byName[name]; exists {
		trierr.Set(trierr.DuplicateKey)
		return nil, trierr.AsError(trierr.DuplicateKey)
	}

	cid := v.nextTick()
	path := fmt.Sprintf("%s/collection-%d", v.Path, cid)
	if len(path) > maxPathLen {
		trierr.Set(trierr.IllegalState)
		return nil, fmt.Errorf("catalog: collection path exceeds %d bytes", maxPathLen)
	}

	col := &Collection{
		cid:         cid,
		typ:         typ,
		name:        name,
		path:        path,
		status:      Loaded,
		maximalSize: v.Defaults.DefaultMaximalSize,
		waitForSync: v.Defaults.WaitForSync,
		canDrop:     true,
		canUnload:   true,
		canRename:   true,
	}

	v.byID[cid] = col
	v.byName[name] = col

	log.WithComponent("catalog").Debug().
		Int64("cid", cid).
		Str("name", name).
		Msg("collection created")

	v.persist(col)
	if v.store != nil {
		if err := v.store.SaveTick(cid); err != nil {
			log.WithComponent("catalog").Error().Err(err).Msg("failed to persist tick")
		}
	}
	v.publish(events.CollectionCreated, col, "collection created")

	return col, nil
}

// LookupByID returns the collection registered under cid.
func (v *Vocbase) LookupByID(cid int64) (*Collection, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.byID[cid]
	return c, ok
}

// LookupByName returns the collection registered under name.
func (v *Vocbase) LookupByName(name string) (*Collection, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c, ok := v.byName[name]
	return c, ok
}

// Collections returns a snapshot of every non-dropped collection
// currently registered in the catalog.
func (v *Vocbase) Collections() []*Collection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*Collection, 0, len(v.byID))
	for _, c := range v.byID {
		out = append(out, c)
	}
	return out
}

// UseByName pins the named collection and returns a handle the caller
// must Release. Nested re-entrance by the same logical caller on the
// same collection is permitted.
func (v *Vocbase) UseByName(name string) (*Collection, error) {
	c, ok := v.LookupByName(name)
	if !ok {
		trierr.Set(trierr.NotFound)
		return nil, trierr.AsError(trierr.NotFound)
	}
	return v.pin(c)
}

// UseById pins the collection registered under cid.
func (v *Vocbase) UseById(cid int64) (*Collection, error) {
	c, ok := v.LookupByID(cid)
	if !ok {
		trierr.Set(trierr.NotFound)
		return nil, trierr.AsError(trierr.NotFound)
	}
	return v.pin(c)
}

func (v *Vocbase) pin(c *Collection) (*Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == Deleted || c.status == Corrupted {
		trierr.Set(trierr.IllegalState)
		return nil, trierr.AsError(trierr.IllegalState)
	}

	c.pins++
	return c, nil
}

// Release unpins a handle obtained from UseByName/UseById.
func (c *Collection) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pins > 0 {
		c.pins--
	}
}

// Rename changes a collection's name. Requires the collection to be
// Loaded or Unloaded and canRename.
func (v *Vocbase) Rename(c *Collection, newName string) error {
	if len(newName) == 0 || len(newName) > maxNameLen {
		trierr.Set(trierr.IllegalState)
		return fmt.Errorf("catalog: collection name length must be in (0, %d]", maxNameLen)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	c.mu.Lock()

	if !c.canRename || (c.status != Loaded && c.status != Unloaded) {
		c.mu.Unlock()
		trierr.Set(trierr.IllegalState)
		return trierr.AsError(trierr.IllegalState)
	}

	if _, exists := v.byName[newName]; exists {
		c.mu.Unlock()
		trierr.Set(trierr.DuplicateKey)
		return trierr.AsError(trierr.DuplicateKey)
	}

	delete(v.byName, c.name)
	c.name = newName
	v.byName[newName] = c
	c.mu.Unlock()

	v.persist(c)
	v.publish(events.CollectionRenamed, c, "collection renamed")
	return nil
}

// Unload transitions a Loaded collection to Unloaded, passing through
// Unloading. Background threads would normally acknowledge quiescence
// before the final transition; this engine has no background
// compaction threads yet, so the transition completes synchronously.
func (v *Vocbase) Unload(c *Collection) error {
	c.mu.Lock()

	if c.status != Loaded {
		c.mu.Unlock()
		trierr.Set(trierr.IllegalState)
		return trierr.AsError(trierr.IllegalState)
	}
	if !c.canUnload {
		c.mu.Unlock()
		trierr.Set(trierr.IllegalState)
		return trierr.AsError(trierr.IllegalState)
	}

	c.status = Unloading
	log.WithComponent("catalog").Debug().Int64("cid", c.cid).Msg("collection unloading")

	c.status = Unloaded
	log.WithComponent("catalog").Debug().Int64("cid", c.cid).Msg("collection unloaded")
	c.mu.Unlock()

	v.persist(c)
	v.publish(events.CollectionUnloaded, c, "collection unloaded")
	return nil
}

// Load transitions an Unloaded collection back to Loaded.
func (v *Vocbase) Load(c *Collection) error {
	c.mu.Lock()
	if c.status != Unloaded {
		c.mu.Unlock()
		trierr.Set(trierr.IllegalState)
		return trierr.AsError(trierr.IllegalState)
	}

	c.status = Loaded
	c.mu.Unlock()

	v.persist(c)
	v.publish(events.CollectionLoaded, c, "collection loaded")
	return nil
}

// Drop transitions a collection to Deleted and moves its handle onto
// the dead list for deferred cleanup.
func (v *Vocbase) Drop(c *Collection) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	c.mu.Lock()
	if !c.canDrop || c.status == Deleted {
		c.mu.Unlock()
		trierr.Set(trierr.IllegalState)
		return trierr.AsError(trierr.IllegalState)
	}
	c.status = Deleted
	c.mu.Unlock()

	delete(v.byID, c.cid)
	delete(v.byName, c.name)
	v.deadList = append(v.deadList, c)

	log.WithComponent("catalog").Debug().Int64("cid", c.cid).Msg("collection dropped")

	if v.store != nil {
		if err := v.store.DeleteCollection(c.cid); err != nil {
			log.WithComponent("catalog").Error().Err(err).Int64("cid", c.cid).Msg("failed to delete persisted collection record")
		}
	}
	v.publish(events.CollectionDropped, c, "collection dropped")

	return nil
}

// MarkCorrupted forces a collection into the terminal Corrupted state,
// used when its parameter file fails to parse.
func (v *Vocbase) MarkCorrupted(c *Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = Corrupted
}

// SetAuth records a credential in the vocbase's authentication map.
func (v *Vocbase) SetAuth(user, passwordHash string) {
	v.authMu.Lock()
	v.auth[user] = passwordHash
	v.authMu.Unlock()

	if v.store != nil {
		if err := v.store.PutAuth(user, passwordHash); err != nil {
			log.WithComponent("catalog").Error().Err(err).Str("user", user).Msg("failed to persist credential")
		}
	}
}

// CheckAuth reports whether user/passwordHash matches a stored
// credential.
func (v *Vocbase) CheckAuth(user, passwordHash string) bool {
	v.authMu.Lock()
	defer v.authMu.Unlock()
	stored, ok := v.auth[user]
	return ok && stored == passwordHash
}
