package store

type WriteOptions struct {
	TTL int64
}

// Store is the minimal KV surface the rule repos and the push
// subscription registry need. Patterns use a trailing glob,
// e.g. "rules:*".
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, options *WriteOptions) error

	Delete(key string) error
	DeleteAll(pattern string) error

	Exists(key string) (bool, error)

	Scan(pattern string, skip int, limit int, fn func(key string, val []byte)) error
	Count(pattern string) int

	Close() error
}
