// Package keyspace names the store keys used by the trigger protocol and
// decodes expired key names back into job triggers.
//
// Layout, for prefix "bossbat" and job "daily":
//
//	bossbat:work:daily          trigger key (recurring occurrence)
//	bossbat:work:demand:daily   demand key (near-immediate occurrence)
//	bossbat:lock:daily          per-occurrence lock
package keyspace

import "strings"

// Keyspace derives key names from a fixed prefix.
type Keyspace struct {
	prefix string
	work   string
	demand string
	lock   string
}

// New returns a Keyspace rooted at prefix.
func New(prefix string) Keyspace {
	return Keyspace{
		prefix: prefix,
		work:   prefix + ":work:",
		demand: prefix + ":work:demand:",
		lock:   prefix + ":lock:",
	}
}

// Prefix returns the namespace prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// Trigger returns the recurring trigger key for name.
func (k Keyspace) Trigger(name string) string { return k.work + name }

// Demand returns the demand key for name.
func (k Keyspace) Demand(name string) string { return k.demand + name }

// Lock returns the lock key for name.
func (k Keyspace) Lock(name string) string { return k.lock + name }

// Decode maps an expired key back to a job name. ok is false for keys
// outside this keyspace's work namespace. Names may contain colons, but a
// job named "demand:x" is indistinguishable from a demand for "x".
func (k Keyspace) Decode(key string) (name string, demand bool, ok bool) {
	if rest, found := strings.CutPrefix(key, k.demand); found {
		return rest, true, rest != ""
	}
	if rest, found := strings.CutPrefix(key, k.work); found {
		return rest, false, rest != ""
	}
	return "", false, false
}
