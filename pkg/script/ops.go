package script

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/pmkol/sllist/pkg/list"
)

var (
	ErrUnknownOp     = errors.New("unknown op")
	ErrMissingValue  = errors.New("missing value")
	ErrMissingIndex  = errors.New("missing index")
	ErrUnexpectedArg = errors.New("unexpected argument")
)

// ops that take Step.Value as argument.
var valueOps = map[string]struct{}{
	"add_first":        {},
	"add_last":         {},
	"search":           {},
	"delete":           {},
	"insert_ascending": {},
}

// ops that take Step.Index as argument.
var indexOps = map[string]struct{}{
	"get_at_index":      {},
	"find_nth_from_end": {},
	"create_cycle_at":   {},
}

var knownOps = map[string]struct{}{
	"add_first":         {},
	"add_last":          {},
	"search":            {},
	"find_max":          {},
	"find_min":          {},
	"get_first":         {},
	"get_last":          {},
	"length":            {},
	"get_at_index":      {},
	"visit":             {},
	"delete":            {},
	"reverse":           {},
	"find_middle_value": {},
	"find_nth_from_end": {},
	"has_cycle":         {},
	"insert_ascending":  {},
	"create_cycle":      {},
	"create_cycle_at":   {},
}

// normalizeOp accepts "has_cycle?" as an alias of "has_cycle".
func normalizeOp(op string) string {
	if op == "has_cycle?" {
		return "has_cycle"
	}
	return op
}

// checkArgs validates the op name of s and that it carries exactly
// the arguments the op takes.
func checkArgs(op string, s *Step) error {
	if _, ok := knownOps[op]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOp, s.Op)
	}

	_, wantValue := valueOps[op]
	switch {
	case wantValue && s.Value == nil:
		return fmt.Errorf("%w for %s", ErrMissingValue, op)
	case !wantValue && s.Value != nil:
		return fmt.Errorf("%w: %s takes no value", ErrUnexpectedArg, op)
	}

	_, wantIndex := indexOps[op]
	switch {
	case wantIndex && s.Index == nil:
		return fmt.Errorf("%w for %s", ErrMissingIndex, op)
	case !wantIndex && s.Index != nil:
		return fmt.Errorf("%w: %s takes no index", ErrUnexpectedArg, op)
	}
	return nil
}

// apply runs s on l and fills in the Value, OK and Text fields of r.
func apply[V constraints.Ordered](l *list.List[V], s *Step, parse func(interface{}) (V, error), r *Result) error {
	var arg V
	var idx int
	if s.Index != nil {
		idx = *s.Index
	}
	if _, ok := valueOps[r.Op]; ok {
		v, err := parse(s.Value)
		if err != nil {
			return fmt.Errorf("invalid value %v: %w", s.Value, err)
		}
		arg = v
	}

	setValue := func(v V, ok bool) {
		r.OK = ok
		if ok {
			r.Value = v
		}
	}

	switch r.Op {
	case "add_first":
		l.AddFirst(arg)
		r.OK = true
	case "add_last":
		l.AddLast(arg)
		r.OK = true
	case "insert_ascending":
		l.InsertAscending(arg)
		r.OK = true
	case "search":
		r.OK = l.Search(arg)
	case "delete":
		r.OK = l.Delete(arg)
	case "find_max":
		setValue(l.FindMax())
	case "find_min":
		setValue(l.FindMin())
	case "get_first":
		setValue(l.GetFirst())
	case "get_last":
		setValue(l.GetLast())
	case "get_at_index":
		setValue(l.GetAt(idx))
	case "find_middle_value":
		setValue(l.FindMiddle())
	case "find_nth_from_end":
		setValue(l.FindNthFromEnd(idx))
	case "length":
		r.Value = l.Len()
		r.OK = true
	case "visit":
		r.Text = l.String()
		r.OK = true
	case "reverse":
		l.Reverse()
		r.OK = true
	case "has_cycle":
		r.OK = l.HasCycle()
	case "create_cycle":
		l.CreateCycle()
		r.OK = !l.IsEmpty()
	case "create_cycle_at":
		r.OK = l.CreateCycleAt(idx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOp, r.Op)
	}
	return nil
}

// cycleSafe reports whether op terminates on a cyclic list.
func cycleSafe(op string) bool {
	return op == "has_cycle"
}
