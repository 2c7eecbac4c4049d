package model

// StageContext carries the outputs of prior tasks within one job run, keyed
// by task id and by the producing task's optional output key. It replaces
// implicit shared state between task closures with an explicit, inspectable
// data-passing contract.
//
// Task execution within one job is strictly sequential, so StageContext is
// written and read by a single goroutine and needs no locking.
type StageContext struct {
	outputs map[string][]byte
	order   []string
}

// NewStageContext returns an empty stage context.
func NewStageContext() *StageContext {
	return &StageContext{outputs: make(map[string][]byte)}
}

// Put stores a task output under the given key. Re-putting a key overwrites
// its value but keeps its original position in the key order.
func (c *StageContext) Put(key string, output []byte) {
	if key == "" {
		return
	}
	if _, exists := c.outputs[key]; !exists {
		c.order = append(c.order, key)
	}
	c.outputs[key] = output
}

// Get returns the output stored under key and whether it exists.
func (c *StageContext) Get(key string) ([]byte, bool) {
	out, ok := c.outputs[key]
	return out, ok
}

// Has reports whether an output exists under key.
func (c *StageContext) Has(key string) bool {
	_, ok := c.outputs[key]
	return ok
}

// Keys returns the stored keys in insertion order.
func (c *StageContext) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Missing returns the subset of required keys that have no stored output, in
// the order they were required.
func (c *StageContext) Missing(required []string) []string {
	var missing []string
	for _, key := range required {
		if !c.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// Len returns the number of stored outputs.
func (c *StageContext) Len() int {
	return len(c.outputs)
}
