// Package state holds the application state and the pure reducer that
// derives a new state from an action. Side effects such as persistence
// live in observers registered on a Store.
package state

import (
	"strings"

	"guidetrack/internal/core"
)

// Collection identifies a top-level part of State. Values combine as a
// bit set.
type Collection uint8

const (
	Tours Collection = 1 << iota
	Expenses
	Agencies
	Settings
	User
	ExpenseCategories

	None Collection = 0
	All             = Tours | Expenses | Agencies | Settings | User | ExpenseCategories
)

var collectionNames = []struct {
	c    Collection
	name string
}{
	{Tours, "tours"},
	{Expenses, "expenses"},
	{Agencies, "agencies"},
	{Settings, "settings"},
	{User, "user"},
	{ExpenseCategories, "expense_categories"},
}

func (c Collection) Has(o Collection) bool {
	return c&o != 0
}

// Each calls fn once for every single collection in c.
func (c Collection) Each(fn func(Collection)) {
	for _, n := range collectionNames {
		if c.Has(n.c) {
			fn(n.c)
		}
	}
}

func (c Collection) String() string {
	var names []string
	for _, n := range collectionNames {
		if c.Has(n.c) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseCollection is the inverse of String for a single collection name.
func ParseCollection(name string) (Collection, bool) {
	for _, n := range collectionNames {
		if n.name == name {
			return n.c, true
		}
	}
	return None, false
}

// State is an immutable snapshot. Reduce always returns fresh slices for
// the collections it changes, so a State can be shared between goroutines.
type State struct {
	Tours             []core.TourEntry
	Expenses          []core.Expense
	Agencies          []core.Agency
	User              *core.UserProfile
	Settings          core.AppSettings
	ExpenseCategories []string
	Loading           bool
}

// Initial is the state before anything has been loaded.
func Initial() State {
	return State{
		Tours:             []core.TourEntry{},
		Expenses:          []core.Expense{},
		Agencies:          []core.Agency{},
		Settings:          core.DefaultSettings(),
		ExpenseCategories: append([]string(nil), core.DefaultExpenseCategories...),
		Loading:           true,
	}
}

func (s State) Tour(id string) (core.TourEntry, bool) {
	for _, t := range s.Tours {
		if t.ID == id {
			return t, true
		}
	}
	return core.TourEntry{}, false
}

func (s State) Expense(id string) (core.Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

func (s State) Agency(id string) (core.Agency, bool) {
	for _, a := range s.Agencies {
		if a.ID == id {
			return a, true
		}
	}
	return core.Agency{}, false
}

// AgencyInUse reports whether any tour references the agency.
func (s State) AgencyInUse(id string) bool {
	for _, t := range s.Tours {
		if t.AgencyID == id {
			return true
		}
	}
	return false
}
