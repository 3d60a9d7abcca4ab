package reminder

import (
	"fmt"
	"sort"

	"remindbot/internal/storage"
	"remindbot/internal/timecode"
)

// tree holds the category configuration. It is not safe for concurrent use;
// Service serializes all access behind its mutex.
type tree struct {
	order []string
	cats  map[string]*Category
}

func newTree() *tree {
	return &tree{cats: map[string]*Category{}}
}

func (t *tree) category(key string) (*Category, error) {
	c, ok := t.cats[key]
	if !ok {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, key)
	}
	return c, nil
}

func (t *tree) subcategory(catKey, subKey string) (*Category, *Subcategory, error) {
	c, err := t.category(catKey)
	if err != nil {
		return nil, nil, err
	}
	s, ok := c.Subs[subKey]
	if !ok {
		return nil, nil, fmt.Errorf("%w: subcategory %q in category %q", ErrNotFound, subKey, catKey)
	}
	return c, s, nil
}

// createCategory derives a slug key from the display name, probing numeric
// suffixes on collision, and seeds the new category with one custom
// subcategory so it is immediately usable.
func (t *tree) createCategory(name string) string {
	key := uniqueKey(SlugKey(name), func(k string) bool {
		_, ok := t.cats[k]
		return ok
	})

	sub := &Subcategory{Key: customSubKey, Name: customSubName, Kind: KindCustom}
	t.cats[key] = &Category{
		Key:   key,
		Name:  name,
		Order: []string{sub.Key},
		Subs:  map[string]*Subcategory{sub.Key: sub},
	}
	t.order = append(t.order, key)
	return key
}

func (t *tree) renameCategory(key, newName string) error {
	c, err := t.category(key)
	if err != nil {
		return err
	}
	c.Name = newName
	return nil
}

// deleteCategory is unconditional. Reminders keep a denormalized label, not
// a live reference, so active reminders are unaffected.
func (t *tree) deleteCategory(key string) error {
	if _, err := t.category(key); err != nil {
		return err
	}
	delete(t.cats, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *tree) addSubcategory(catKey, name string, kind Kind) (string, error) {
	c, err := t.category(catKey)
	if err != nil {
		return "", err
	}
	key := uniqueKey(SlugKey(name), func(k string) bool {
		_, ok := c.Subs[k]
		return ok
	})
	c.Subs[key] = &Subcategory{Key: key, Name: name, Kind: kind}
	c.Order = append(c.Order, key)
	return key, nil
}

func (t *tree) renameSubcategory(catKey, subKey, newName string) error {
	_, s, err := t.subcategory(catKey, subKey)
	if err != nil {
		return err
	}
	s.Name = newName
	return nil
}

// deleteSubcategory rejects removal of a category's last subcategory.
func (t *tree) deleteSubcategory(catKey, subKey string) error {
	c, _, err := t.subcategory(catKey, subKey)
	if err != nil {
		return err
	}
	if len(c.Subs) <= 1 {
		return fmt.Errorf("%w: cannot delete the last subcategory of category %q", ErrInvariant, catKey)
	}
	delete(c.Subs, subKey)
	for i, k := range c.Order {
		if k == subKey {
			c.Order = append(c.Order[:i], c.Order[i+1:]...)
			break
		}
	}
	return nil
}

// configureFixed sets the duration and message of a fixed subcategory.
func (t *tree) configureFixed(catKey, subKey string, days, hours, minutes int, message string) error {
	_, s, err := t.subcategory(catKey, subKey)
	if err != nil {
		return err
	}
	if s.Kind != KindFixed {
		return fmt.Errorf("%w: subcategory %q is not fixed", ErrValidation, subKey)
	}
	if err := timecode.ValidateParts(days, hours, minutes); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	s.Fixed = &FixedSpec{
		Seconds: timecode.FromParts(days, hours, minutes),
		Message: message,
	}
	return nil
}

// categories returns deep copies in tree order.
func (t *tree) categories() []Category {
	out := make([]Category, 0, len(t.order))
	for _, key := range t.order {
		if c, ok := t.cats[key]; ok {
			out = append(out, copyCategory(c))
		}
	}
	return out
}

func copyCategory(c *Category) Category {
	cp := Category{
		Key:   c.Key,
		Name:  c.Name,
		Order: append([]string(nil), c.Order...),
		Subs:  make(map[string]*Subcategory, len(c.Subs)),
	}
	for k, s := range c.Subs {
		sc := *s
		if s.Fixed != nil {
			fx := *s.Fixed
			sc.Fixed = &fx
		}
		cp.Subs[k] = &sc
	}
	return cp
}

// toRecords converts the tree to its persisted shape. Fixed durations are
// stored as the canonical "{d}д {h}ч {m}м" triple.
func (t *tree) toRecords() map[string]storage.CategoryRecord {
	out := make(map[string]storage.CategoryRecord, len(t.cats))
	for key, c := range t.cats {
		rec := storage.CategoryRecord{
			Name:          c.Name,
			Subcategories: make(map[string]storage.SubcategoryRecord, len(c.Subs)),
		}
		for skey, s := range c.Subs {
			srec := storage.SubcategoryRecord{Name: s.Name, Type: s.Kind.String()}
			if s.Fixed != nil {
				dur := timecode.Canonical(s.Fixed.Seconds)
				msg := s.Fixed.Message
				srec.Time = &dur
				srec.Message = &msg
			}
			rec.Subcategories[skey] = srec
		}
		out[key] = rec
	}
	return out
}

// treeFromRecords rebuilds the tree from a persisted snapshot. Creation
// order is not persisted, so both category and subcategory order fall back
// to sorted keys.
func treeFromRecords(records map[string]storage.CategoryRecord) *tree {
	t := newTree()
	for _, key := range sortedKeys(records) {
		rec := records[key]
		c := &Category{
			Key:  key,
			Name: rec.Name,
			Subs: make(map[string]*Subcategory, len(rec.Subcategories)),
		}
		for _, skey := range sortedKeys(rec.Subcategories) {
			srec := rec.Subcategories[skey]
			kind, err := ParseKind(srec.Type)
			if err != nil {
				kind = KindCustom
			}
			s := &Subcategory{Key: skey, Name: srec.Name, Kind: kind}
			if kind == KindFixed && srec.Time != nil && srec.Message != nil {
				s.Fixed = &FixedSpec{
					Seconds: timecode.ParseFreeform(*srec.Time),
					Message: *srec.Message,
				}
			}
			c.Subs[skey] = s
			c.Order = append(c.Order, skey)
		}
		t.cats[key] = c
		t.order = append(t.order, key)
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
