package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxIDAttempts = 32

// Store owns the live, insertion-ordered task collection. Mutations act on
// the held *Task values in place; persistence only happens on Save.
// A Store is not safe for concurrent use.
type Store struct {
	repo   Repository
	tasks  []*Task
	now    func() time.Time
	nextID func() string
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now; overdue and due-today checks use its date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the default short-id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.nextID = gen }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty Store backed by repo. Call Load to read the
// persisted collection.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		nextID: shortID,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func shortID() string {
	return uuid.NewString()[:8]
}

// Patch lists the fields Update should change; nil means leave unchanged.
// Category set to "" clears the category.
type Patch struct {
	Title        *string
	Category     *string
	DueDate      *Date
	ClearDueDate bool
}

// Stats summarizes the collection.
type Stats struct {
	Total    int     `json:"total"`
	Done     int     `json:"done"`
	Open     int     `json:"open"`
	Overdue  int     `json:"overdue"`
	DueToday int     `json:"due_today"`
	Progress float64 `json:"progress"`
}

func (s *Store) today() Date {
	return DateOf(s.now())
}

// uniqueID draws ids until one is unused; a generator that keeps colliding
// falls back to a full UUID.
func (s *Store) uniqueID() string {
	for range maxIDAttempts {
		if id := s.nextID(); id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new open task. It returns ErrEmptyTitle when title is blank.
func (s *Store) Add(title, category string, due *Date) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	t := newTask(s.uniqueID(), title, category, due, s.now())
	s.tasks = append(s.tasks, t)
	return t, nil
}

// AddTyped is Add with the title prefixed by the marker of kind.
func (s *Store) AddTyped(kind, title, category string, due *Date) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	return s.Add(TypedTitle(kind, strings.TrimSpace(title)), category, due)
}

// Import appends external tasks with fresh ids and returns how many were
// taken. Entries with a blank name are skipped.
func (s *Store) Import(items []ExternalTask) int {
	n := 0
	for _, item := range items {
		draft := FromExternal(item)
		if strings.TrimSpace(draft.Title) == "" {
			s.log.Warn("skipping external task without a name", zap.String("tag", item.Tag))
			continue
		}
		t := newTask(s.uniqueID(), draft.Title, draft.Category, nil, s.now())
		t.Done = draft.Done
		s.tasks = append(s.tasks, t)
		n++
	}
	return n
}

// Delete removes the task with id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// Toggle flips Done on the task with id and reports whether it existed.
func (s *Store) Toggle(id string) bool {
	t := s.GetByID(id)
	if t == nil {
		return false
	}
	t.Toggle()
	return true
}

// Update applies p to the task with id. It returns false for an unknown id and
// ErrEmptyTitle, leaving the task untouched, for a blank title.
func (s *Store) Update(id string, p Patch) (bool, error) {
	t := s.GetByID(id)
	if t == nil {
		return false, nil
	}
	var title string
	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
		if title == "" {
			return false, ErrEmptyTitle
		}
	}

	if p.Title != nil {
		t.Title = title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		t.DueDate = copyDate(p.DueDate)
	}
	return true, nil
}

// GetByID returns the live task with id, or nil.
func (s *Store) GetByID(id string) *Task {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i]
	}
	return nil
}

func (s *Store) filter(keep func(*Task) bool) []*Task {
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) GetAll() []*Task {
	return s.filter(func(*Task) bool { return true })
}

func (s *Store) GetOpen() []*Task {
	return s.filter(func(t *Task) bool { return !t.Done })
}

func (s *Store) GetDone() []*Task {
	return s.filter(func(t *Task) bool { return t.Done })
}

func (s *Store) GetByCategory(category string) []*Task {
	return s.filter(func(t *Task) bool { return t.Category == category })
}

func (s *Store) GetOverdue() []*Task {
	today := s.today()
	return s.filter(func(t *Task) bool { return t.IsOverdueOn(today) })
}

func (s *Store) GetDueToday() []*Task {
	today := s.today()
	return s.filter(func(t *Task) bool { return t.IsDueTodayOn(today) })
}

// GetCategories returns every non-empty category in use, sorted.
func (s *Store) GetCategories() []string {
	seen := make(map[string]struct{})
	cats := []string{}
	for _, t := range s.tasks {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		cats = append(cats, t.Category)
	}
	sort.Strings(cats)
	return cats
}

func (s *Store) Statistics() Stats {
	today := s.today()
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Done {
			st.Done++
		} else {
			st.Open++
		}
		if t.IsOverdueOn(today) {
			st.Overdue++
		}
		if t.IsDueTodayOn(today) {
			st.DueToday++
		}
	}
	if st.Total > 0 {
		st.Progress = float64(st.Done) / float64(st.Total)
	}
	return st
}

// Save writes the whole collection through the repository.
func (s *Store) Save() error {
	if err := s.repo.Save(s.tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Load replaces the collection with the repository contents, discarding
// unsaved changes. Later duplicates of an id are dropped.
func (s *Store) Load() error {
	loaded, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	seen := make(map[string]struct{}, len(loaded))
	tasks := make([]*Task, 0, len(loaded))
	for _, t := range loaded {
		if _, dup := seen[t.ID]; dup {
			s.log.Warn("dropping task with duplicate id", zap.String("id", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	s.tasks = tasks
	s.log.Debug("tasks loaded", zap.Int("count", len(tasks)))
	return nil
}
