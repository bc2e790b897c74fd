package exclusion

// defaultCapacity covers a normal daily quota.
const defaultCapacity = 8

type options struct {
	capacity int
	seed     []string
}

// Option applies a configuration option to a new Set.
type Option func(*options)

// WithCapacity pre-sizes the set. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithNames seeds the set with names that are already excluded.
func WithNames(names ...string) Option {
	return func(o *options) {
		o.seed = append(o.seed, names...)
	}
}
