package list

import "golang.org/x/exp/constraints"

// Node holds one value and a link to its successor.
// The value is fixed at construction; only the link can change.
type Node[V constraints.Ordered] struct {
	value V
	next  *Node[V]
}

func NewNode[V constraints.Ordered](v V, next *Node[V]) *Node[V] {
	return &Node[V]{value: v, next: next}
}

func (n *Node[V]) Value() V {
	return n.value
}

func (n *Node[V]) Next() *Node[V] {
	return n.next
}

// SetNext relinks n. It is the only way the chain topology changes.
func (n *Node[V]) SetNext(next *Node[V]) {
	n.next = next
}
