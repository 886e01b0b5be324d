// Package registry contains the camera registry.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ctenhank/viscactl/internal/logger"
	"github.com/ctenhank/viscactl/internal/visca"
)

var (
	// ErrCameraNotFound is returned when a camera is not in the registry.
	ErrCameraNotFound = errors.New("camera not found")

	// ErrCameraExists is returned when a name is already taken.
	ErrCameraExists = errors.New("camera already exists")
)

type registryParent interface {
	logger.Writer
}

type entry struct {
	name string
	conn *visca.Conn
}

// Registry owns the camera connections and tracks which camera is active.
// It is the only place that knows the active camera.
type Registry struct {
	Parent registryParent
	Stats  visca.Stats

	// called after a camera is removed.
	OnRemove func(name string)

	// called after a camera is renamed.
	OnRename func(oldName string, newName string)

	mutex   sync.RWMutex
	entries []*entry
	active  string
}

// New allocates a Registry.
func New(parent registryParent, stats visca.Stats) *Registry {
	if parent == nil {
		parent = logger.Discard
	}
	return &Registry{
		Parent: parent,
		Stats:  stats,
	}
}

// Log implements logger.Writer.
func (r *Registry) Log(level logger.Level, format string, args ...interface{}) {
	r.Parent.Log(level, "[registry] "+format, args...)
}

func (r *Registry) find(name string) int {
	for i, e := range r.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// Add adds a camera and opens its connection.
// When a camera with the same name exists, its connection is returned.
// The first camera becomes active when no camera is.
func (r *Registry) Add(id visca.Identity) (*visca.Conn, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if i := r.find(id.Name); i >= 0 {
		return r.entries[i].conn, nil
	}

	conn, err := visca.NewConnFromIdentity(id, r.Parent, r.Stats)
	if err != nil {
		return nil, fmt.Errorf("camera '%s': %w", id.Name, err)
	}

	r.entries = append(r.entries, &entry{name: id.Name, conn: conn})
	r.Log(logger.Info, "camera '%s' added (%s:%d)", id.Name, id.Address, id.Port)

	if r.active == "" {
		r.active = id.Name
		r.Log(logger.Info, "active camera is '%s'", id.Name)
	}

	return conn, nil
}

// Update re-points an existing camera to a new endpoint.
func (r *Registry) Update(id visca.Identity) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	i := r.find(id.Name)
	if i < 0 {
		return fmt.Errorf("%w: '%s'", ErrCameraNotFound, id.Name)
	}

	return r.entries[i].conn.UpdateConnection(id.Address, id.Port)
}

// Remove closes and removes a camera.
func (r *Registry) Remove(name string) error {
	r.mutex.Lock()

	i := r.find(name)
	if i < 0 {
		r.mutex.Unlock()
		return fmt.Errorf("%w: '%s'", ErrCameraNotFound, name)
	}

	r.entries[i].conn.Close()
	r.entries = append(r.entries[:i], r.entries[i+1:]...)

	if r.active == name {
		r.active = ""
		r.Log(logger.Info, "active camera '%s' removed", name)
	}

	r.Log(logger.Info, "camera '%s' removed", name)
	onRemove := r.OnRemove
	r.mutex.Unlock()

	if onRemove != nil {
		onRemove(name)
	}

	return nil
}

// Get returns the connection of a camera.
func (r *Registry) Get(name string) (*visca.Conn, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	i := r.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrCameraNotFound, name)
	}

	return r.entries[i].conn, nil
}

// SetActive selects the camera that receives operator input.
func (r *Registry) SetActive(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.find(name) < 0 {
		return fmt.Errorf("%w: '%s'", ErrCameraNotFound, name)
	}

	if r.active != name {
		r.active = name
		r.Log(logger.Info, "active camera is '%s'", name)
	}

	return nil
}

// Active returns the active camera.
func (r *Registry) Active() (string, *visca.Conn, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	i := r.find(r.active)
	if i < 0 {
		return "", nil, false
	}

	return r.active, r.entries[i].conn, true
}

// List returns the identities of all cameras, in display order.
func (r *Registry) List() []visca.Identity {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ret := make([]visca.Identity, len(r.entries))
	for i, e := range r.entries {
		ret[i] = e.conn.Identity()
	}
	return ret
}

// Reorder moves a camera to a new position.
func (r *Registry) Reorder(name string, index int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.find(name)
	if i < 0 {
		return fmt.Errorf("%w: '%s'", ErrCameraNotFound, name)
	}

	if index < 0 {
		index = 0
	}
	if index >= len(r.entries) {
		index = len(r.entries) - 1
	}
	if i == index {
		return nil
	}

	e := r.entries[i]
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.entries = append(r.entries[:index], append([]*entry{e}, r.entries[index:]...)...)

	return nil
}

// Rename changes the name of a camera.
func (r *Registry) Rename(name string, newName string) error {
	r.mutex.Lock()

	i := r.find(name)
	if i < 0 {
		r.mutex.Unlock()
		return fmt.Errorf("%w: '%s'", ErrCameraNotFound, name)
	}

	if name == newName {
		r.mutex.Unlock()
		return nil
	}

	if r.find(newName) >= 0 {
		r.mutex.Unlock()
		return fmt.Errorf("%w: '%s'", ErrCameraExists, newName)
	}

	r.entries[i].name = newName
	r.entries[i].conn.SetName(newName)
	if r.active == name {
		r.active = newName
	}

	r.Log(logger.Info, "camera '%s' renamed to '%s'", name, newName)
	onRename := r.OnRename
	r.mutex.Unlock()

	if onRename != nil {
		onRename(name, newName)
	}

	return nil
}

// Sync makes the registry match a list of identities, keeping their order.
// Cameras whose endpoint changed are re-pointed, not recreated.
func (r *Registry) Sync(ids []visca.Identity) error {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id.Name] = struct{}{}
	}

	for _, cur := range r.List() {
		if _, ok := wanted[cur.Name]; !ok {
			err := r.Remove(cur.Name)
			if err != nil {
				return err
			}
		}
	}

	var errs []error

	for i, id := range ids {
		if _, err := r.Get(id.Name); err == nil {
			err = r.Update(id)
			if err != nil {
				errs = append(errs, fmt.Errorf("camera '%s': %w", id.Name, err))
			}
		} else {
			_, err = r.Add(id)
			if err != nil {
				errs = append(errs, err)
				continue
			}
		}

		r.Reorder(id.Name, i)
	}

	return errors.Join(errs...)
}

// Close closes all connections.
func (r *Registry) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, e := range r.entries {
		e.conn.Close()
	}
	r.entries = nil
	r.active = ""
}
