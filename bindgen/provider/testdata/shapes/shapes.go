package shapes

// Store is an interface and cannot be a namespace.
//
//hostbind:namespace
type Store interface {
	Get(key string) string
}

// Pair is generic and cannot be a namespace.
//
//hostbind:namespace
type Pair[T any] struct {
	A, B T
}

// ID is an alias and cannot be a namespace.
//
//hostbind:namespace
type ID = string

// Run is a function and cannot be a namespace.
//
//hostbind:namespace
func Run() {}
