package cache

// Lookup reads key from r and asserts the stored value to V. A value of any
// other type is reported as a miss.
func Lookup[V any](r Reader, key string) (V, bool) {
	var zero V
	raw, ok := r.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}
