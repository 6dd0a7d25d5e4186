package model

// Collection is an ordered store with stable 1-based indices. Slots are
// only ever appended; Set and Clear overwrite an allocated slot in place.
type Collection[T any] struct {
	items []*T
}

// NewCollection returns an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Add appends item and returns its index, which is the previous count + 1.
func (c *Collection[T]) Add(item *T) int {
	c.items = append(c.items, item)
	return len(c.items)
}

// Get returns the item at index, or nil when index is out of range or the
// slot was cleared.
func (c *Collection[T]) Get(index int) *T {
	if index < 1 || index > len(c.items) {
		return nil
	}
	return c.items[index-1]
}

// Set replaces the item in an allocated slot. It is a no-op returning false
// for any index outside 1..Count(); it never extends the collection.
func (c *Collection[T]) Set(index int, item *T) bool {
	if index < 1 || index > len(c.items) {
		return false
	}
	c.items[index-1] = item
	return true
}

// Clear nulls an allocated slot without releasing its index.
func (c *Collection[T]) Clear(index int) bool {
	return c.Set(index, nil)
}

// Count returns the number of allocated slots, including cleared ones.
func (c *Collection[T]) Count() int {
	return len(c.items)
}

// Each calls fn for every non-nil item in index order and stops at the
// first error.
func (c *Collection[T]) Each(fn func(index int, item *T) error) error {
	for i, item := range c.items {
		if item == nil {
			continue
		}
		if err := fn(i+1, item); err != nil {
			return err
		}
	}
	return nil
}
