package list

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/constraints"
)

// List is a singly linked list rooted at a private head.
// The zero value is an empty list ready to use.
//
// Every method except HasCycle assumes the chain is acyclic. After
// CreateCycle or CreateCycleAt they may not terminate.
// List is not safe for concurrent use.
type List[V constraints.Ordered] struct {
	head *Node[V]
}

func New[V constraints.Ordered]() *List[V] {
	return &List[V]{}
}

func (l *List[V]) IsEmpty() bool {
	return l.head == nil
}

// AddFirst inserts v as the new head in O(1).
func (l *List[V]) AddFirst(v V) {
	l.head = NewNode(v, l.head)
}

// AddLast appends v after the last node in O(n).
func (l *List[V]) AddLast(v V) {
	n := NewNode[V](v, nil)
	if l.head == nil {
		l.head = n
		return
	}
	l.last().next = n
}

// last returns the tail node. l must not be empty.
func (l *List[V]) last() *Node[V] {
	p := l.head
	for p.next != nil {
		p = p.next
	}
	return p
}

func (l *List[V]) Search(v V) bool {
	for p := l.head; p != nil; p = p.next {
		if p.value == v {
			return true
		}
	}
	return false
}

func (l *List[V]) FindMax() (v V, ok bool) {
	if l.head == nil {
		return
	}
	v = l.head.value
	for p := l.head.next; p != nil; p = p.next {
		if p.value > v {
			v = p.value
		}
	}
	return v, true
}

func (l *List[V]) FindMin() (v V, ok bool) {
	if l.head == nil {
		return
	}
	v = l.head.value
	for p := l.head.next; p != nil; p = p.next {
		if p.value < v {
			v = p.value
		}
	}
	return v, true
}

func (l *List[V]) GetFirst() (v V, ok bool) {
	if l.head == nil {
		return
	}
	return l.head.value, true
}

// GetLast walks the list twice: once for the length and once to index it.
func (l *List[V]) GetLast() (v V, ok bool) {
	if l.head == nil {
		return
	}
	return l.GetAt(l.Len() - 1)
}

// Len counts the nodes by traversal.
func (l *List[V]) Len() int {
	n := 0
	for p := l.head; p != nil; p = p.next {
		n++
	}
	return n
}

// GetAt returns the value at zero-based index i.
// ok is false if i is negative or not less than Len().
func (l *List[V]) GetAt(i int) (v V, ok bool) {
	if i < 0 || i >= l.Len() {
		return
	}
	p := l.head
	for ; i > 0; i-- {
		p = p.next
	}
	return p.value, true
}

// Visit writes every value followed by a single space, head first.
func (l *List[V]) Visit(w io.Writer) error {
	for p := l.head; p != nil; p = p.next {
		if _, err := fmt.Fprint(w, p.value, " "); err != nil {
			return err
		}
	}
	return nil
}

// String is the Visit output without the trailing space.
func (l *List[V]) String() string {
	b := new(bytes.Buffer)
	_ = l.Visit(b)
	return strings.TrimSuffix(b.String(), " ")
}

// Delete unlinks the first node whose value equals v.
// It reports whether such a node was found; the list is unchanged otherwise.
func (l *List[V]) Delete(v V) bool {
	if l.head == nil {
		return false
	}
	if l.head.value == v {
		l.head = l.head.next
		return true
	}

	prev := l.head
	for p := l.head.next; p != nil; p = p.next {
		if p.value == v {
			prev.next = p.next
			p.next = nil
			return true
		}
		prev = p
	}
	return false
}

// Reverse re-points every link at its predecessor in place.
// Nodes are not copied; the old tail becomes the head.
func (l *List[V]) Reverse() {
	var prev *Node[V]
	cur := l.head
	for cur != nil {
		next := cur.next
		cur.next = prev
		prev = cur
		cur = next
	}
	l.head = prev
}

// FindMiddle returns the value at index Len()/2. For an even length
// this is the second of the two middle values.
func (l *List[V]) FindMiddle() (v V, ok bool) {
	if l.head == nil {
		return
	}
	return l.GetAt(l.Len() / 2)
}

// FindNthFromEnd returns the value n positions before the tail,
// n = 0 being the tail itself.
func (l *List[V]) FindNthFromEnd(n int) (v V, ok bool) {
	last := l.Len() - 1
	if n < 0 || n > last {
		return
	}
	return l.GetAt(last - n)
}

// HasCycle reports whether following next links ever revisits a node.
// It uses two pointers moving at different speeds, so it terminates
// in O(n) time and O(1) space whatever node the cycle re-enters at.
func (l *List[V]) HasCycle() bool {
	slow, fast := l.head, l.head
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
		if slow == fast {
			return true
		}
	}
	return false
}

// InsertAscending inserts v keeping an ascending list ascending.
// The result is unspecified if the list was not sorted.
func (l *List[V]) InsertAscending(v V) {
	if l.head == nil || v <= l.head.value {
		l.AddFirst(v)
		return
	}

	p := l.head
	for p.next != nil {
		if p.value <= v && v <= p.next.value {
			p.next = NewNode(v, p.next)
			return
		}
		p = p.next
	}
	p.next = NewNode[V](v, nil)
}

// CreateCycle links the tail back to the head. Diagnostic only.
func (l *List[V]) CreateCycle() {
	if l.head == nil {
		return
	}
	l.last().next = l.head
}

// CreateCycleAt links the tail back to the node at index i, so the cycle
// re-enters the chain somewhere other than the head. Diagnostic only.
func (l *List[V]) CreateCycleAt(i int) bool {
	if i < 0 || l.head == nil {
		return false
	}

	var target *Node[V]
	p := l.head
	for idx := 0; ; idx++ {
		if idx == i {
			target = p
		}
		if p.next == nil {
			break
		}
		p = p.next
	}
	if target == nil {
		return false
	}
	p.next = target
	return true
}
