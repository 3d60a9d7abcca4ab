package reminder

import (
	"fmt"
	"time"
)

// Kind distinguishes the two subcategory behaviors.
type Kind int

const (
	// KindCustom asks the user for a duration and message per reminder.
	KindCustom Kind = iota
	// KindFixed carries a preconfigured duration and message.
	KindFixed
)

func (k Kind) String() string {
	if k == KindFixed {
		return "fixed"
	}
	return "custom"
}

// ParseKind maps the persisted/user-facing type tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "custom":
		return KindCustom, nil
	case "fixed":
		return KindFixed, nil
	default:
		return KindCustom, fmt.Errorf("%w: unknown subcategory type %q", ErrValidation, s)
	}
}

// FixedSpec is the baked-in payload of a configured fixed subcategory.
type FixedSpec struct {
	Seconds int64
	Message string
}

// Subcategory is one leaf of the category tree.
//
// A fixed subcategory starts out unconfigured (Fixed == nil) and becomes
// usable for reminder creation only after ConfigureFixed sets its payload.
// Custom subcategories never carry a payload.
type Subcategory struct {
	Key   string
	Name  string
	Kind  Kind
	Fixed *FixedSpec
}

// Configured reports whether the subcategory can create reminders.
func (s Subcategory) Configured() bool {
	return s.Kind == KindCustom || s.Fixed != nil
}

// Category groups subcategories under a display name. Order preserves
// creation order within the process lifetime; after a reload it is the
// sorted key order.
type Category struct {
	Key   string
	Name  string
	Order []string
	Subs  map[string]*Subcategory
}

// Reminder is a one-shot scheduled notification. CategoryLabel is the
// denormalized "Category - Subcategory" display string frozen at creation;
// later category edits do not touch it.
type Reminder struct {
	ID            string
	OwnerID       int64
	DueAt         time.Time
	Message       string
	CategoryLabel string
}
