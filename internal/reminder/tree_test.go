package reminder

import (
	"errors"
	"testing"
)

func TestSlugKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"My Category", "my_category"},
		{"Таймер", "таймер"},
		{"  Club Tasks 2  ", "club_tasks_2"},
		{"a!b@c", "abc"},
		{"under_score", "under_score"},
	}
	for _, tc := range cases {
		if got := SlugKey(tc.in); got != tc.want {
			t.Errorf("SlugKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateCategoryCollision(t *testing.T) {
	t.Parallel()

	tr := newTree()
	k1 := tr.createCategory("Daily")
	k2 := tr.createCategory("Daily")
	k3 := tr.createCategory("Daily")

	if k1 != "daily" || k2 != "daily_1" || k3 != "daily_2" {
		t.Fatalf("unexpected keys: %q %q %q", k1, k2, k3)
	}
}

func TestNewCategorySeedsCustomSub(t *testing.T) {
	t.Parallel()

	tr := newTree()
	key := tr.createCategory("Daily")
	c, err := tr.category(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Subs) != 1 {
		t.Fatalf("expected exactly one seeded subcategory, got %d", len(c.Subs))
	}
	sub := c.Subs[customSubKey]
	if sub == nil || sub.Kind != KindCustom {
		t.Fatalf("expected seeded custom subcategory, got %+v", sub)
	}
}

func TestDeleteLastSubcategoryRejected(t *testing.T) {
	t.Parallel()

	tr := newTree()
	key := tr.createCategory("Daily")

	err := tr.deleteSubcategory(key, customSubKey)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	c, _ := tr.category(key)
	if len(c.Subs) != 1 {
		t.Fatalf("subcategory count changed after rejected delete: %d", len(c.Subs))
	}

	// With a second subcategory present, deletion goes through.
	if _, err := tr.addSubcategory(key, "Extra", KindFixed); err != nil {
		t.Fatal(err)
	}
	if err := tr.deleteSubcategory(key, customSubKey); err != nil {
		t.Fatalf("delete with remaining subcategory should succeed: %v", err)
	}
}

func TestSubcategoryCollisionScopedToCategory(t *testing.T) {
	t.Parallel()

	tr := newTree()
	k1 := tr.createCategory("One")
	k2 := tr.createCategory("Two")

	s1, _ := tr.addSubcategory(k1, "Raid", KindFixed)
	s2, _ := tr.addSubcategory(k1, "Raid", KindFixed)
	s3, _ := tr.addSubcategory(k2, "Raid", KindFixed)

	if s1 != "raid" || s2 != "raid_1" {
		t.Fatalf("collision within category: %q %q", s1, s2)
	}
	if s3 != "raid" {
		t.Fatalf("keys should not collide across categories: %q", s3)
	}
}

func TestConfigureFixed(t *testing.T) {
	t.Parallel()

	tr := newTree()
	key := tr.createCategory("Daily")
	subKey, _ := tr.addSubcategory(key, "Raid", KindFixed)

	_, sub, _ := tr.subcategory(key, subKey)
	if sub.Configured() {
		t.Fatal("fixed subcategory should start unconfigured")
	}

	if err := tr.configureFixed(key, subKey, 0, 2, 30, "go raid"); err != nil {
		t.Fatal(err)
	}
	_, sub, _ = tr.subcategory(key, subKey)
	if sub.Fixed == nil || sub.Fixed.Seconds != 9000 || sub.Fixed.Message != "go raid" {
		t.Fatalf("unexpected fixed payload: %+v", sub.Fixed)
	}

	// Range violations and wrong kind are validation errors.
	if err := tr.configureFixed(key, subKey, 0, 24, 0, "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("hours out of range: got %v", err)
	}
	if err := tr.configureFixed(key, customSubKey, 0, 1, 0, "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("configuring a custom subcategory: got %v", err)
	}
}

func TestTreeRecordsRoundTrip(t *testing.T) {
	t.Parallel()

	tr := seedTree()
	back := treeFromRecords(tr.toRecords())

	if len(back.cats) != len(tr.cats) {
		t.Fatalf("category count mismatch: %d vs %d", len(back.cats), len(tr.cats))
	}
	for key, want := range tr.cats {
		got, ok := back.cats[key]
		if !ok {
			t.Fatalf("category %q lost in round trip", key)
		}
		if got.Name != want.Name || len(got.Subs) != len(want.Subs) {
			t.Fatalf("category %q changed: %+v", key, got)
		}
		for skey, wsub := range want.Subs {
			gsub, ok := got.Subs[skey]
			if !ok {
				t.Fatalf("subcategory %q/%q lost in round trip", key, skey)
			}
			if gsub.Kind != wsub.Kind || gsub.Name != wsub.Name {
				t.Fatalf("subcategory %q/%q changed: %+v", key, skey, gsub)
			}
			if (gsub.Fixed == nil) != (wsub.Fixed == nil) {
				t.Fatalf("subcategory %q/%q configuredness changed", key, skey)
			}
			if wsub.Fixed != nil && *gsub.Fixed != *wsub.Fixed {
				t.Fatalf("subcategory %q/%q payload changed: %+v", key, skey, gsub.Fixed)
			}
		}
	}
}

func TestUnknownKeysAreNotFound(t *testing.T) {
	t.Parallel()

	tr := seedTree()
	if _, err := tr.category("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := tr.subcategory("таймер", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tr.renameCategory("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
