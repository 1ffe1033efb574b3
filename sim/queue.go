package sim

// HookPosItemPush marks when an item is pushed into a queue.
var HookPosItemPush = &HookPos{Name: "Item Push"}

// HookPosItemPop marks when an item is popped from a queue.
var HookPosItemPop = &HookPos{Name: "Item Pop"}

// An ItemQueue is an unbounded FIFO queue of items.
type ItemQueue struct {
	HookableBase

	name     string
	elements []uint64
}

// NewItemQueue creates a queue holding the given items, head first.
func NewItemQueue(name string, items ...uint64) *ItemQueue {
	q := &ItemQueue{name: name}
	q.elements = append(q.elements, items...)

	return q
}

// Name returns the name of the queue.
func (q *ItemQueue) Name() string {
	return q.name
}

// Push appends an item to the tail.
func (q *ItemQueue) Push(item uint64) {
	q.elements = append(q.elements, item)

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosItemPush,
			Item:   item,
		})
	}
}

// Pop removes and returns the head item. The second return value is false if
// the queue is empty.
func (q *ItemQueue) Pop() (uint64, bool) {
	if len(q.elements) == 0 {
		return 0, false
	}

	item := q.elements[0]
	q.elements = q.elements[1:]

	if len(q.elements) == 0 {
		q.elements = q.elements[:0:0]
	}

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosItemPop,
			Item:   item,
		})
	}

	return item, true
}

// Peek returns the head item without removing it.
func (q *ItemQueue) Peek() (uint64, bool) {
	if len(q.elements) == 0 {
		return 0, false
	}

	return q.elements[0], true
}

// Size returns the number of items in the queue.
func (q *ItemQueue) Size() int {
	return len(q.elements)
}

// Items returns a copy of the queued items, head first.
func (q *ItemQueue) Items() []uint64 {
	items := make([]uint64, len(q.elements))
	copy(items, q.elements)

	return items
}
