package network

// Lookup is a dedicated point-lookup capability: it answers queries for
// single keys and deliberately offers nothing else. Mappings whose key space
// is huge or virtual (e.g. a total mapping backed by a computation) expose
// this interface instead of a general associative container, which would also
// demand an enumeration operation they cannot honestly provide.
type Lookup[K comparable, V any] interface {
	Lookup(key K) (V, bool)
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc[K comparable, V any] func(K) (V, bool)

// Lookup implements Lookup.
func (f LookupFunc[K, V]) Lookup(key K) (V, bool) { return f(key) }

// Constant returns the total mapping sending every key to the same value.
// Such a mapping has no finite enumeration, so expose it through Lookup (or
// NonEnumerable), never through a real container.
func Constant[K comparable, V any](value V) Lookup[K, V] {
	return LookupFunc[K, V](func(K) (V, bool) { return value, true })
}

// Enumerable is the wider associative-container contract some callers insist
// on structurally: point lookup plus full enumeration.
type Enumerable[K comparable, V any] interface {
	Lookup[K, V]

	// Enumerate returns the full key/value mapping.
	Enumerate() (map[K]V, error)
}

// NonEnumerable wraps a point-lookup into the Enumerable contract for callers
// that require it structurally. Enumerate always fails with
// ErrForbiddenOperation: a lookup-only mapping has no meaningful enumeration,
// and a fabricated empty one would be silently wrong.
func NonEnumerable[K comparable, V any](l Lookup[K, V]) Enumerable[K, V] {
	return &nonEnumerable[K, V]{lookup: l}
}

type nonEnumerable[K comparable, V any] struct {
	lookup Lookup[K, V]
}

func (n *nonEnumerable[K, V]) Lookup(key K) (V, bool) { return n.lookup.Lookup(key) }

func (n *nonEnumerable[K, V]) Enumerate() (map[K]V, error) {
	return nil, ErrForbiddenOperation
}
