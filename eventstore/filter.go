package eventstore

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type (
	FilterEventTypeString = string
	FilterKeyString       = string
	FilterValString       = string
)

/***** Filter *****/

// Filter selects the events of a "dynamic event stream".
//
// Items are OR-ed. Within an item, event types are OR-ed and AND-ed with the predicates,
// which are either OR-ed or AND-ed among themselves. The time range and the sequence
// number bound apply to all items. A Filter without items matches every event.
type Filter struct {
	items                    []FilterItem
	occurredFrom             time.Time
	occurredUntil            time.Time
	sequenceNumberHigherThan MaxSequenceNumberUint
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// OccurredFrom is the inclusive lower time bound, zero if unbounded.
func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

// OccurredUntil is the inclusive upper time bound, zero if unbounded.
func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// SequenceNumberHigherThan is the exclusive lower sequence number bound, 0 if unbounded.
func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// WithSequenceNumberHigherThan returns a copy of f that only matches events after the given sequence number.
// Incremental projections use it to query only what happened after their snapshot.
func (f Filter) WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) Filter {
	f.sequenceNumberHigherThan = sequenceNumber

	return f
}

// Hash identifies the event stream f describes. Event types, predicates and OR-ed
// items are hashed in sorted order, so the order they were added in does not matter.
// The sequence number bound is left out, so a Filter and its incremental variants
// share one hash.
func (f Filter) Hash() string {
	sum := sha256.Sum256(f.canonicalJSON())

	return hex.EncodeToString(sum[:])
}

type canonicalFilter struct {
	Items []canonicalFilterItem `json:"items"`
	From  string                `json:"from,omitempty"`
	Until string                `json:"until,omitempty"`
}

type canonicalFilterItem struct {
	EventTypes []string    `json:"eventTypes"`
	Predicates [][2]string `json:"predicates"`
	All        bool        `json:"all"`
}

func (f Filter) canonicalJSON() []byte {
	c := canonicalFilter{Items: make([]canonicalFilterItem, 0, len(f.items))}

	for _, item := range f.items {
		predicates := make([][2]string, 0, len(item.predicates))
		for _, p := range item.predicates {
			predicates = append(predicates, [2]string{p.key, p.val})
		}

		c.Items = append(c.Items, canonicalFilterItem{
			EventTypes: append([]string{}, item.eventTypes...),
			Predicates: predicates,
			All:        item.allPredicatesMustMatch,
		})
	}

	slices.SortFunc(c.Items, compareCanonicalItems)

	if !f.occurredFrom.IsZero() {
		c.From = f.occurredFrom.UTC().Format(time.RFC3339Nano)
	}

	if !f.occurredUntil.IsZero() {
		c.Until = f.occurredUntil.UTC().Format(time.RFC3339Nano)
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c)
	if err != nil {
		// a struct of strings and bools always marshals
		panic(err)
	}

	return data
}

func compareCanonicalItems(x, y canonicalFilterItem) int {
	if c := slices.Compare(x.EventTypes, y.EventTypes); c != 0 {
		return c
	}

	if c := slices.CompareFunc(x.Predicates, y.Predicates, func(a, b [2]string) int {
		return slices.Compare(a[:], b[:])
	}); c != 0 {
		return c
	}

	switch {
	case x.All == y.All:
		return 0
	case y.All:
		return -1
	default:
		return 1
	}
}

/***** FilterItem *****/

type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

func (fi FilterItem) isEmpty() bool {
	return len(fi.eventTypes) == 0 && len(fi.predicates) == 0
}

/***** FilterPredicate *****/

// FilterPredicate matches events whose top-level payload key has the given string value.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

// P builds a FilterPredicate.
func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder assembles a Filter fluently. Every method returns a new builder, so
// partially built filters can be shared.
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf("NumberAdded", "NumberMultiplied").
//		AndAnyPredicateOf(eventstore.P("NumberID", id)).
//		Finalize()
type FilterBuilder struct {
	filter  Filter
	current FilterItem
}

// BuildEventFilter starts a Filter. Finish it with Finalize or MatchingAnyEvent.
func BuildEventFilter() FilterBuilder {
	return FilterBuilder{}
}

// Matching starts a new item, closing the current one.
func (b FilterBuilder) Matching() FilterBuilder {
	return b.closeCurrentItem()
}

// OrMatching closes the current item and starts a new one, OR-ed with the previous.
func (b FilterBuilder) OrMatching() FilterBuilder {
	return b.closeCurrentItem()
}

// AnyEventTypeOf adds event types to the current item. Empty and duplicate types are dropped.
func (b FilterBuilder) AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterBuilder {
	all := append(slices.Clone(b.current.eventTypes), eventType)
	all = append(all, eventTypes...)
	all = slices.DeleteFunc(all, func(e FilterEventTypeString) bool { return e == "" })
	slices.Sort(all)
	b.current.eventTypes = slices.Clip(slices.Compact(all))

	return b
}

// AndAnyEventTypeOf is AnyEventTypeOf, for builders that started with predicates.
func (b FilterBuilder) AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterBuilder {
	return b.AnyEventTypeOf(eventType, eventTypes...)
}

// AnyPredicateOf adds predicates to the current item of which any must match.
// Partial predicates (empty key or value) and duplicates are dropped.
func (b FilterBuilder) AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	b.current.allPredicatesMustMatch = false

	return b.addPredicates(predicate, predicates...)
}

// AndAnyPredicateOf is AnyPredicateOf, for builders that started with event types.
func (b FilterBuilder) AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	return b.AnyPredicateOf(predicate, predicates...)
}

// AllPredicatesOf adds predicates to the current item of which all must match.
func (b FilterBuilder) AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	b.current.allPredicatesMustMatch = true

	return b.addPredicates(predicate, predicates...)
}

// AndAllPredicatesOf is AllPredicatesOf, for builders that started with event types.
func (b FilterBuilder) AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	return b.AllPredicatesOf(predicate, predicates...)
}

func (b FilterBuilder) addPredicates(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	all := append(slices.Clone(b.current.predicates), predicate)
	all = append(all, predicates...)
	all = slices.DeleteFunc(all, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(all, func(x, y FilterPredicate) int {
		if c := strings.Compare(x.key, y.key); c != 0 {
			return c
		}

		return strings.Compare(x.val, y.val)
	})
	b.current.predicates = slices.Clip(slices.Compact(all))

	return b
}

// OccurredFrom sets the inclusive lower time bound.
func (b FilterBuilder) OccurredFrom(from time.Time) FilterBuilder {
	b.filter.occurredFrom = from

	return b
}

// OccurredUntil sets the inclusive upper time bound.
func (b FilterBuilder) OccurredUntil(until time.Time) FilterBuilder {
	b.filter.occurredUntil = until

	return b
}

// AndOccurredUntil is OccurredUntil, reading naturally after OccurredFrom.
func (b FilterBuilder) AndOccurredUntil(until time.Time) FilterBuilder {
	return b.OccurredUntil(until)
}

// WithSequenceNumberHigherThan sets the exclusive lower sequence number bound.
func (b FilterBuilder) WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) FilterBuilder {
	b.filter.sequenceNumberHigherThan = sequenceNumber

	return b
}

// MatchingAnyEvent returns a Filter without items, keeping bounds that were set.
func (b FilterBuilder) MatchingAnyEvent() Filter {
	b.filter.items = nil

	return b.filter
}

// Finalize closes the current item and returns the Filter. Empty items are dropped.
func (b FilterBuilder) Finalize() Filter {
	return b.closeCurrentItem().filter
}

func (b FilterBuilder) closeCurrentItem() FilterBuilder {
	if !b.current.isEmpty() {
		b.filter.items = append(slices.Clip(b.filter.items), b.current)
	}

	b.current = FilterItem{}

	return b
}
