package state

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
)

const (
	DefaultTheme     = entity.ThemeDark
	DefaultDateRange = entity.DateRange28d
	DefaultUserName  = "Creator"
)

// Observer receives every change with its sequence number. Sequence numbers grow with each mutation,
// so a receiver can drop notifications that arrive out of order.
type Observer = func(seq uint64, snap entity.Snapshot)

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log.With(slog.String("item", "Store"))
	}
}

func WithSnapshot(snap entity.Snapshot) Option {
	return func(s *Store) {
		s.restore(snap)
	}
}

// Store is the single source of truth for session, filter and template state.
// Mutators never fail. Observers are called after each mutation with a copy of the new state.
type Store struct {
	mu        sync.RWMutex
	snap      entity.Snapshot
	seq       uint64
	observers map[int]Observer
	nextID    int
	log       *slog.Logger
}

func New(opts ...Option) *Store {
	s := &Store{
		snap:      Defaults(),
		observers: make(map[int]Observer),
		log:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func Defaults() entity.Snapshot {
	return entity.Snapshot{
		Theme:           DefaultTheme,
		DateRange:       DefaultDateRange,
		IsAuthenticated: true,
		UserName:        DefaultUserName,
		UploadTemplates: []entity.UploadTemplate{},
		Channels:        []entity.Channel{},
	}
}

func (s *Store) Snapshot() entity.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.Clone()
}

// Versioned returns the state together with the sequence number of the last mutation.
func (s *Store) Versioned() (uint64, entity.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seq, s.snap.Clone()
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.observers, id)
	}
}

// Restore replaces the whole state with a previously persisted snapshot. Observers are not notified.
func (s *Store) Restore(snap entity.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restore(snap)
	s.log.Info("State restored", slog.Int("channels", len(s.snap.Channels)), slog.Int("templates", len(s.snap.UploadTemplates)))
}

func (s *Store) restore(snap entity.Snapshot) {
	s.snap = snap.Clone()
	if !s.snap.Theme.Valid() {
		s.snap.Theme = DefaultTheme
	}
	if s.snap.DateRange == "" {
		s.snap.DateRange = DefaultDateRange
	}
}

func (s *Store) SetTheme(theme entity.Theme) {
	s.update("SetTheme", func(snap *entity.Snapshot) {
		snap.Theme = theme
	})
}

func (s *Store) SetIsAuthenticated(flag bool) {
	s.update("SetIsAuthenticated", func(snap *entity.Snapshot) {
		snap.IsAuthenticated = flag
	})
}

// Login opens the auth gate. An empty name keeps the current one.
func (s *Store) Login(userName string) {
	s.update("Login", func(snap *entity.Snapshot) {
		snap.IsAuthenticated = true
		if userName != "" {
			snap.UserName = userName
		}
	})
}

func (s *Store) Logout() {
	s.SetIsAuthenticated(false)
}

func (s *Store) SetUserName(name string) {
	s.update("SetUserName", func(snap *entity.Snapshot) {
		snap.UserName = name
	})
}

// SetYouTubeAPIKey stores the user supplied credential. Nil clears it.
func (s *Store) SetYouTubeAPIKey(key *string) {
	s.update("SetYouTubeAPIKey", func(snap *entity.Snapshot) {
		snap.YouTubeAPIKey = entity.CloneString(key)
	})
}

// AddChannel appends a channel. A channel with the same id is replaced in place.
func (s *Store) AddChannel(channel entity.Channel) {
	s.update("AddChannel", func(snap *entity.Snapshot) {
		if i := slices.IndexFunc(snap.Channels, func(c entity.Channel) bool { return c.ID == channel.ID }); i >= 0 {
			snap.Channels[i] = channel

			return
		}

		snap.Channels = append(snap.Channels, channel)
	})
}

func (s *Store) RemoveChannel(id string) {
	s.update("RemoveChannel", func(snap *entity.Snapshot) {
		snap.Channels = slices.DeleteFunc(snap.Channels, func(c entity.Channel) bool { return c.ID == id })
	})
}

func (s *Store) ToggleChannelConnection(id string) {
	s.update("ToggleChannelConnection", func(snap *entity.Snapshot) {
		for i := range snap.Channels {
			if snap.Channels[i].ID == id {
				snap.Channels[i].IsConnected = !snap.Channels[i].IsConnected
			}
		}
	})
}

// SetSelectedChannelID sets the active channel filter. Nil selects all channels.
func (s *Store) SetSelectedChannelID(id *string) {
	s.update("SetSelectedChannelID", func(snap *entity.Snapshot) {
		snap.SelectedChannelID = entity.CloneString(id)
	})
}

// SetDateRange keeps the custom range even when switching away from custom.
func (s *Store) SetDateRange(dr entity.DateRange) {
	s.update("SetDateRange", func(snap *entity.Snapshot) {
		snap.DateRange = dr
	})
}

func (s *Store) SetCustomDateRange(cr entity.CustomDateRange) {
	s.update("SetCustomDateRange", func(snap *entity.Snapshot) {
		snap.CustomDateRange = cr.Clone()
	})
}

// PickCustomDate feeds one picker click into the custom range.
func (s *Store) PickCustomDate(t time.Time) entity.CustomDateRange {
	var picked entity.CustomDateRange
	s.update("PickCustomDate", func(snap *entity.Snapshot) {
		snap.CustomDateRange = snap.CustomDateRange.Pick(t)
		picked = snap.CustomDateRange.Clone()
	})

	return picked
}

func (s *Store) AddTemplate(tmpl entity.UploadTemplate) {
	s.update("AddTemplate", func(snap *entity.Snapshot) {
		snap.UploadTemplates = append(snap.UploadTemplates, tmpl.Clone())
	})
}

// UpdateTemplate merges patch into the template with the given id. Unknown ids are ignored.
func (s *Store) UpdateTemplate(id string, patch entity.TemplatePatch) {
	s.update("UpdateTemplate", func(snap *entity.Snapshot) {
		for i := range snap.UploadTemplates {
			if snap.UploadTemplates[i].ID == id {
				snap.UploadTemplates[i] = patch.Apply(snap.UploadTemplates[i])
			}
		}
	})
}

func (s *Store) RemoveTemplate(id string) {
	s.update("RemoveTemplate", func(snap *entity.Snapshot) {
		snap.UploadTemplates = slices.DeleteFunc(snap.UploadTemplates, func(t entity.UploadTemplate) bool { return t.ID == id })
	})
}

func (s *Store) ToggleSidebar() {
	s.update("ToggleSidebar", func(snap *entity.Snapshot) {
		snap.SidebarCollapsed = !snap.SidebarCollapsed
	})
}

func (s *Store) update(op string, fn func(snap *entity.Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.seq++
	seq := s.seq
	snap := s.snap.Clone()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	s.log.Debug("State changed", slog.String("op", op))

	for _, o := range observers {
		o(seq, snap)
	}
}
