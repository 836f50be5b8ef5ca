package memoryengine

import (
	"slices"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

// matches mirrors the WHERE clause postgresengine builds for filter.
func matches(filter eventstore.Filter, stored storedEvent) bool {
	if stored.sequenceNumber <= filter.SequenceNumberHigherThan() {
		return false
	}

	if from := filter.OccurredFrom(); !from.IsZero() && stored.event.OccurredAt.Before(from) {
		return false
	}

	if until := filter.OccurredUntil(); !until.IsZero() && stored.event.OccurredAt.After(until) {
		return false
	}

	if len(filter.Items()) == 0 {
		return true
	}

	return slices.ContainsFunc(filter.Items(), func(item eventstore.FilterItem) bool {
		return matchesItem(item, stored)
	})
}

func matchesItem(item eventstore.FilterItem, stored storedEvent) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), stored.event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	matchesPredicate := func(p eventstore.FilterPredicate) bool {
		val, ok := stored.payload[p.Key()].(string)
		return ok && val == p.Val()
	}

	if item.AllPredicatesMustMatch() {
		for _, p := range item.Predicates() {
			if !matchesPredicate(p) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(item.Predicates(), matchesPredicate)
}
