package relicvm

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Loader records which compiled packages have been initialized.
type Loader struct {
	rt     *Runtime
	mu     sync.Mutex
	loaded map[string]bool
	inits  map[string]Body
}

func newLoader(rt *Runtime) *Loader {
	return &Loader{
		rt:     rt,
		loaded: make(map[string]bool),
		inits:  make(map[string]Body),
	}
}

func (l *Loader) IsLoaded(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[name]
}

// MarkLoaded marks name as initialized, reporting whether it was not before.
func (l *Loader) MarkLoaded(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded[name] {
		return false
	}
	l.loaded[name] = true
	return true
}

func (l *Loader) unmark(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.loaded, name)
}

// Register installs the initializer of package name.
// The initializer runs in the importing environment and leaves the stack unchanged.
func (l *Loader) Register(name string, init Body) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inits[name] = init
}

func (l *Loader) Registered() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := lo.Keys(l.inits)
	slices.Sort(names)
	return names
}

func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := lo.Keys(l.loaded)
	slices.Sort(names)
	return names
}

func (l *Loader) init(name string) (Body, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	body, ok := l.inits[name]
	return body, ok
}

// Import runs the initializer of package name once per runtime.
func (c *Context) Import(name string) error {
	c.trace("import", name)
	loader := c.rt.packages
	init, ok := loader.init(name)
	if !ok {
		return failName("import", name, ErrUnknownPackage)
	}
	if !loader.MarkLoaded(name) {
		return nil
	}
	depth := c.Depth()
	if err := init(c); err != nil {
		loader.unmark(name)
		return err
	}
	if d := c.Depth(); d != depth {
		loader.unmark(name)
		return failf("import", NoHandle, ErrStackImbalance, "package %s changed depth from %d to %d", name, depth, d)
	}
	c.rt.logger.Info("package initialized", "package", name)
	return nil
}
