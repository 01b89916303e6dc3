package feed

// Queue is the ordered display sequence. No two items share an Index; items
// are only ever appended or cleared all at once. Not safe for concurrent use
// on its own, Session serializes access.
type Queue struct {
	items []Item
	pos   map[int]int
}

func NewQueue() *Queue {
	return &Queue{pos: make(map[int]int)}
}

// Merge appends every item whose Index is not yet queued, keeping arrival
// order, and reports how many were appended. Duplicates inside the batch
// itself are dropped too.
func (q *Queue) Merge(batch []Item) int {
	if q.pos == nil {
		q.pos = make(map[int]int)
	}
	added := 0
	for _, item := range batch {
		if _, ok := q.pos[item.Index]; ok {
			continue
		}
		q.pos[item.Index] = len(q.items)
		q.items = append(q.items, item)
		added++
	}
	return added
}

func (q *Queue) Reset() {
	q.items = nil
	q.pos = make(map[int]int)
}

func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Contains(index int) bool {
	_, ok := q.pos[index]
	return ok
}

// Position returns the 0-based queue position of index, or -1.
func (q *Queue) Position(index int) int {
	if p, ok := q.pos[index]; ok {
		return p
	}
	return -1
}

func (q *Queue) Items() []Item {
	return append([]Item(nil), q.items...)
}

func (q *Queue) Indices() []int {
	out := make([]int, len(q.items))
	for i, item := range q.items {
		out[i] = item.Index
	}
	return out
}
