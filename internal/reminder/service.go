package reminder

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"remindbot/internal/eventbus"
	"remindbot/internal/storage"
	"remindbot/internal/timecode"
	logx "remindbot/pkg/logx"
)

// Service owns the category tree and the reminder store. Every mutation,
// whether user-driven or the expiry sweep, runs behind one mutex, so no two
// mutations interleave at the data-structure level. Mutations are persisted
// write-through: one flush per operation, after the in-memory change.
//
// Persistence failures on write are logged and the in-memory state is kept;
// durable state may lag until the next successful flush.
type Service struct {
	log   logx.Logger
	bus   eventbus.Bus
	store storage.Store // nil when storage is disabled
	now   func() time.Time

	mu        sync.Mutex
	tree      *tree
	reminders map[string]Reminder
}

type Option func(*Service)

// WithClock replaces the wall-clock source. Tests use this to make due
// times deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(log logx.Logger, bus eventbus.Bus, store storage.Store, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:       log.With(logx.String("svc", "reminder")),
		bus:       bus,
		store:     store,
		now:       time.Now,
		tree:      newTree(),
		reminders: map[string]Reminder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads both snapshots from storage. Read failures are non-fatal: the
// service logs them and starts with empty state. An empty category snapshot
// installs the default seed and persists it immediately.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if records, err := s.store.LoadCategories(ctx); err != nil {
			s.log.Warn("loading category snapshot failed, starting empty", logx.Err(err))
		} else if len(records) > 0 {
			s.tree = treeFromRecords(records)
		}

		if records, err := s.store.LoadReminders(ctx); err != nil {
			s.log.Warn("loading reminder snapshot failed, starting empty", logx.Err(err))
		} else {
			for id, rec := range records {
				r, err := reminderFromRecord(id, rec)
				if err != nil {
					s.log.Warn("skipping malformed reminder record", logx.String("id", id), logx.Err(err))
					continue
				}
				s.reminders[id] = r
			}
		}
	}

	if len(s.tree.cats) == 0 {
		s.tree = seedTree()
		s.flushCategoriesLocked(ctx)
		s.log.Info("default categories seeded", logx.Int("categories", len(s.tree.cats)))
	}

	s.log.Info("state loaded",
		logx.Int("categories", len(s.tree.cats)),
		logx.Int("reminders", len(s.reminders)))
}

// ---- Read operations ----

// Categories returns deep copies of all categories in tree order.
func (s *Service) Categories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.categories()
}

// Category returns a deep copy of one category.
func (s *Service) Category(key string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.tree.category(key)
	if err != nil {
		return Category{}, err
	}
	return copyCategory(c), nil
}

// Subcategories returns the subcategories of one category in tree order.
func (s *Service) Subcategories(catKey string) ([]Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.tree.category(catKey)
	if err != nil {
		return nil, err
	}
	out := make([]Subcategory, 0, len(c.Order))
	for _, key := range c.Order {
		if sub, ok := c.Subs[key]; ok {
			sc := *sub
			if sub.Fixed != nil {
				fx := *sub.Fixed
				sc.Fixed = &fx
			}
			out = append(out, sc)
		}
	}
	return out, nil
}

// ListForOwner returns the owner's pending reminders. Entries whose due
// time has already passed are excluded; the sweep will collect them
// momentarily.
func (s *Service) ListForOwner(ownerID int64) []Reminder {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Reminder
	for _, r := range s.reminders {
		if r.OwnerID != ownerID {
			continue
		}
		if !r.DueAt.After(now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ---- Reminder creation ----

// CreateFixed creates a reminder from a configured fixed subcategory.
func (s *Service) CreateFixed(ctx context.Context, catKey, subKey string, ownerID int64) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, sub, err := s.tree.subcategory(catKey, subKey)
	if err != nil {
		return Reminder{}, err
	}
	if sub.Kind != KindFixed {
		return Reminder{}, fmt.Errorf("%w: subcategory %q is not a fixed timer", ErrValidation, subKey)
	}
	if sub.Fixed == nil {
		return Reminder{}, fmt.Errorf("%w: fixed subcategory %q is not configured yet", ErrValidation, subKey)
	}

	r := s.insertLocked(ownerID, sub.Fixed.Seconds, sub.Fixed.Message, c.Name+" - "+sub.Name)
	s.flushRemindersLocked(ctx)
	s.publish("reminder.created", r)
	return r, nil
}

// CreateCustom creates a reminder with a caller-supplied duration and
// message. A zero total duration is rejected.
func (s *Service) CreateCustom(ctx context.Context, catKey, subKey string, ownerID int64, days, hours, minutes int, message string) (Reminder, error) {
	if err := timecode.ValidateParts(days, hours, minutes); err != nil {
		return Reminder{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	total := timecode.FromParts(days, hours, minutes)
	if total <= 0 {
		return Reminder{}, fmt.Errorf("%w: duration must not be zero", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, sub, err := s.tree.subcategory(catKey, subKey)
	if err != nil {
		return Reminder{}, err
	}

	r := s.insertLocked(ownerID, total, message, c.Name+" - "+sub.Name)
	s.flushRemindersLocked(ctx)
	s.publish("reminder.created", r)
	return r, nil
}

func (s *Service) insertLocked(ownerID, seconds int64, message, label string) Reminder {
	now := s.now()
	r := Reminder{
		ID:            mintID(ownerID, now),
		OwnerID:       ownerID,
		DueAt:         now.Add(time.Duration(seconds) * time.Second),
		Message:       message,
		CategoryLabel: label,
	}
	// The clock can collide on rapid creation; probe until the id is fresh.
	for {
		if _, exists := s.reminders[r.ID]; !exists {
			break
		}
		now = now.Add(time.Nanosecond)
		r.ID = mintID(ownerID, now)
	}
	s.reminders[r.ID] = r

	s.log.Info("reminder created",
		logx.String("id", r.ID),
		logx.Int64("owner", r.OwnerID),
		logx.Time("due_at", r.DueAt),
		logx.String("category", r.CategoryLabel))
	return r
}

// mintID derives the reminder identity from the owner and the creation
// instant. Ids are opaque to everything else.
func mintID(ownerID int64, now time.Time) string {
	return strconv.FormatInt(ownerID, 10) + "_" + strconv.FormatInt(now.UnixNano(), 10)
}

// ---- Sweep support ----

// CollectDue returns all reminders with dueAt <= now, in store iteration
// order. It does not remove them; the sweep calls RemoveAll after its
// delivery attempts.
func (s *Service) CollectDue(now time.Time) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Reminder
	for _, r := range s.reminders {
		if !r.DueAt.After(now) {
			due = append(due, r)
		}
	}
	return due
}

// RemoveAll deletes the given reminders and flushes once if anything was
// actually removed.
func (s *Service) RemoveAll(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if _, ok := s.reminders[id]; ok {
			delete(s.reminders, id)
			removed++
		}
	}
	if removed > 0 {
		s.flushRemindersLocked(ctx)
	}
}

// ---- Category administration (see Admin for the authorization gate) ----

func (s *Service) createCategory(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.tree.createCategory(name)
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", key)
	return key, nil
}

func (s *Service) renameCategory(ctx context.Context, key, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.renameCategory(key, newName); err != nil {
		return err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", key)
	return nil
}

func (s *Service) deleteCategory(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.deleteCategory(key); err != nil {
		return err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", key)
	return nil
}

func (s *Service) addSubcategory(ctx context.Context, catKey, name string, kind Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, err := s.tree.addSubcategory(catKey, name, kind)
	if err != nil {
		return "", err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", catKey)
	return key, nil
}

func (s *Service) renameSubcategory(ctx context.Context, catKey, subKey, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.renameSubcategory(catKey, subKey, newName); err != nil {
		return err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", catKey)
	return nil
}

func (s *Service) deleteSubcategory(ctx context.Context, catKey, subKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.deleteSubcategory(catKey, subKey); err != nil {
		return err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", catKey)
	return nil
}

func (s *Service) configureFixed(ctx context.Context, catKey, subKey string, days, hours, minutes int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.configureFixed(catKey, subKey, days, hours, minutes, message); err != nil {
		return err
	}
	s.flushCategoriesLocked(ctx)
	s.publish("categories.changed", catKey)
	return nil
}

// ---- Persistence ----

func (s *Service) flushRemindersLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	records := make(map[string]storage.ReminderRecord, len(s.reminders))
	for id, r := range s.reminders {
		records[id] = recordFromReminder(r)
	}
	if err := s.store.SaveReminders(ctx, records); err != nil {
		s.log.Error("persisting reminder snapshot failed", logx.Err(err))
	}
}

func (s *Service) flushCategoriesLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCategories(ctx, s.tree.toRecords()); err != nil {
		s.log.Error("persisting category snapshot failed", logx.Err(err))
	}
}

func recordFromReminder(r Reminder) storage.ReminderRecord {
	return storage.ReminderRecord{
		Message:  r.Message,
		EndTime:  r.DueAt.Format(time.RFC3339Nano),
		UserID:   r.OwnerID,
		Category: r.CategoryLabel,
	}
}

func reminderFromRecord(id string, rec storage.ReminderRecord) (Reminder, error) {
	due, err := time.Parse(time.RFC3339Nano, rec.EndTime)
	if err != nil {
		return Reminder{}, fmt.Errorf("bad end_time %q: %w", rec.EndTime, err)
	}
	return Reminder{
		ID:            id,
		OwnerID:       rec.UserID,
		DueAt:         due,
		Message:       rec.Message,
		CategoryLabel: rec.Category,
	}, nil
}

func (s *Service) publish(typ string, data any) {
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: typ, Data: data})
	}
}
