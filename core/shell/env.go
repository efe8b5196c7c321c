package shell

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Environ is the key/value store behind variable expansion and the
// export/unset builtins. The OS-backed implementation mutates the host
// process environment in place so spawned commands inherit changes;
// MapEnv backs tests.
type Environ interface {
	Getenv(key string) string
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	Environ() []string
	ExpandEnv(s string) string
}

// NewOSEnv returns an Environ backed by the host process environment.
func NewOSEnv() *OSEnv {
	return &OSEnv{}
}

// OSEnv reads and writes the real process environment.
type OSEnv struct{}

var _ Environ = (*OSEnv)(nil)

func (*OSEnv) Getenv(key string) string            { return os.Getenv(key) }
func (*OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (*OSEnv) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (*OSEnv) Unsetenv(key string) error           { return os.Unsetenv(key) }
func (*OSEnv) Environ() []string                   { return os.Environ() }
func (*OSEnv) ExpandEnv(s string) string           { return os.ExpandEnv(s) }

// CopyEnv copies all the "KEY=VALUE" entries of environ into dst.
func CopyEnv(dst Environ, environ []string) error {
	for _, e := range environ {
		key, value := splitEnvEntry(e)
		if err := dst.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

// splitEnvEntry splits a "KEY=VALUE" entry, tolerating entries with no
// value and values containing "=".
func splitEnvEntry(e string) (key, value string) {
	split := strings.SplitN(e, "=", 2)
	if len(split) > 1 {
		return split[0], split[1]
	}
	return split[0], ""
}

// NewMapEnv creates a new empty environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFrom creates a new environment seeded with a copy of the
// entries in environ.
func NewMapEnvFrom(environ []string) *MapEnv {
	out := &MapEnv{}
	// Ignore error, it is never set for MapEnv.
	_ = CopyEnv(out, environ)
	return out
}

// MapEnv implements an in-memory Environ.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
}

var _ Environ = (*MapEnv)(nil)

// Setenv implements Environ.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
	return nil
}

// Unsetenv implements Environ.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.env != nil {
		delete(m.env, key)
	}
	return nil
}

// LookupEnv implements Environ.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Environ.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv implements Environ.ExpandEnv.
func (m *MapEnv) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ implements Environ.Environ. Entries are sorted so listings are
// deterministic.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	var env []string
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}
