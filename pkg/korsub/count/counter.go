package count

// Counter is a string frequency map with bounded-memory pruning.
//
// Pruning is lossy: an evicted key restarts at zero when it reappears, so a
// count that survived one or more prunes is a lower bound on its true
// frequency.
type Counter map[string]int64

// NewCounter creates an empty counter
func NewCounter() Counter {
	return make(Counter)
}

// Inc increments the count for key by one
func (c Counter) Inc(key string) {
	c[key]++
}

// Add increments the count for key by n
func (c Counter) Add(key string, n int64) {
	c[key] += n
}

// Get returns the count for key, zero when absent
func (c Counter) Get(key string) int64 {
	return c[key]
}

// Contains reports whether key is present
func (c Counter) Contains(key string) bool {
	_, ok := c[key]
	return ok
}

// Prune removes every key whose count is below threshold and returns the number
// of evicted keys. Surviving counts are untouched.
func (c Counter) Prune(threshold int64) int {
	evicted := 0
	for k, v := range c {
		if v < threshold {
			delete(c, k)
			evicted++
		}
	}
	return evicted
}

// Total returns the sum of all counts
func (c Counter) Total() int64 {
	var total int64
	for _, v := range c {
		total += v
	}
	return total
}
