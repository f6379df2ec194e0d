package mockdata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	_ "embed"

	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/query"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

const (
	serviceName = "mockdata"

	DefaultDelay     = 500 * time.Millisecond
	DefaultStaleTime = 5 * time.Minute

	maxAllTimeDays = 90

	kindChannels  = "channels"
	kindAnalytics = "analytics"
	kindUploads   = "uploads"
	kindComments  = "comments"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// rangeFactors scale the 28 day fixture totals to a preset.
var rangeFactors = map[entity.DateRange]float64{
	entity.DateRange12h: 0.5 / 28,
	entity.DateRange7d:  7.0 / 28,
	entity.DateRange28d: 1,
	entity.DateRangeAll: 12,
}

type Fixtures struct {
	Channels  []entity.Channel            `yaml:"channels"`
	Analytics map[string]entity.Analytics `yaml:"analytics"`
	Uploads   []entity.Upload             `yaml:"uploads"`
	Comments  []entity.Comment            `yaml:"comments"`
}

func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cannot parse fixtures: %w", err)
	}

	return &f, nil
}

func DefaultFixtures() *Fixtures {
	f, err := ParseFixtures(defaultFixtures)
	if err != nil {
		panic(err)
	}

	return f
}

type Option func(*Service)

func WithDelay(d time.Duration) Option {
	return func(s *Service) {
		s.delay = d
	}
}

func WithStaleTime(d time.Duration) Option {
	return func(s *Service) {
		s.cache.staleTime = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.cache.now = now
	}
}

// Service stands in for the YouTube API: every call returns static fixtures after a fixed delay.
type Service struct {
	fixtures *Fixtures
	delay    time.Duration
	cache    *cache
	now      func() time.Time
	log      *slog.Logger
}

func NewService(fixtures *Fixtures, log *slog.Logger, opts ...Option) *Service {
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}

	s := &Service{
		fixtures: fixtures,
		delay:    DefaultDelay,
		cache:    newCache(DefaultStaleTime, time.Now),
		now:      time.Now,
		log:      log.With(slog.String("service", serviceName)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Channels(ctx context.Context) ([]entity.Channel, error) {
	v, err := s.fetch(ctx, cacheKey(kindChannels, nil, ""), func() any {
		return slices.Clone(s.fixtures.Channels)
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]entity.Channel)), nil
}

// Analytics aggregates the fixture totals of the filtered channels, scaled to the date range.
func (s *Service) Analytics(ctx context.Context, channelID *string, dr entity.DateRange, custom entity.CustomDateRange) (entity.Analytics, error) {
	key := cacheKey(kindAnalytics, channelID, string(dr)+customKey(dr, custom))
	v, err := s.fetch(ctx, key, func() any {
		return s.analytics(channelID, dr, custom)
	})
	if err != nil {
		return entity.Analytics{}, err
	}

	a := v.(entity.Analytics)
	a.DailyViews = slices.Clone(a.DailyViews)

	return a, nil
}

func (s *Service) Uploads(ctx context.Context, channelID *string) ([]entity.Upload, error) {
	v, err := s.fetch(ctx, cacheKey(kindUploads, channelID, ""), func() any {
		return filterByChannel(s.fixtures.Uploads, channelID, func(u entity.Upload) string { return u.ChannelID })
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]entity.Upload)), nil
}

func (s *Service) Comments(ctx context.Context, channelID *string) ([]entity.Comment, error) {
	v, err := s.fetch(ctx, cacheKey(kindComments, channelID, ""), func() any {
		return filterByChannel(s.fixtures.Comments, channelID, func(c entity.Comment) string { return c.ChannelID })
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]entity.Comment)), nil
}

// Dashboard runs every fetch at once, so it costs a single delay.
func (s *Service) Dashboard(ctx context.Context, channelID *string, dr entity.DateRange, custom entity.CustomDateRange) (*entity.Dashboard, error) {
	var d entity.Dashboard

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		d.Channels, err = s.Channels(egCtx)

		return err
	})
	eg.Go(func() error {
		var err error
		d.Analytics, err = s.Analytics(egCtx, channelID, dr, custom)

		return err
	})
	eg.Go(func() error {
		var err error
		d.Uploads, err = s.Uploads(egCtx, channelID)

		return err
	})
	eg.Go(func() error {
		var err error
		d.Comments, err = s.Comments(egCtx, channelID)

		return err
	})

	if err := eg.Wait(); err != nil {
		s.log.Error("Cannot build dashboard", slog.Any("error", err))

		return nil, fmt.Errorf("cannot build dashboard: %w", err)
	}

	return &d, nil
}

func (s *Service) fetch(ctx context.Context, key string, load func() any) (any, error) {
	if v, ok := s.cache.get(key); ok {
		s.log.Debug("Cache hit", slog.String("key", key))

		return v, nil
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	v := load()
	s.cache.set(key, v)

	return v, nil
}

func (s *Service) analytics(channelID *string, dr entity.DateRange, custom entity.CustomDateRange) entity.Analytics {
	a := entity.Analytics{
		DateRange:  dr,
		DailyViews: []entity.DataPoint{},
	}
	if channelID != nil {
		id := *channelID
		a.ChannelID = &id
	}

	var base entity.Analytics
	for _, c := range s.fixtures.Channels {
		if channelID != nil && c.ID != *channelID {
			continue
		}

		f, ok := s.fixtures.Analytics[c.ID]
		if !ok {
			continue
		}

		base.Views += f.Views
		base.WatchHours += f.WatchHours
		base.Subscribers += f.Subscribers
		base.RevenueCents += f.RevenueCents
	}

	now := s.now()
	days, factor := s.span(dr, custom)
	a.Views = scale(base.Views, factor)
	a.WatchHours = scale(base.WatchHours, factor)
	a.Subscribers = scale(base.Subscribers, factor)
	a.RevenueCents = scale(base.RevenueCents, factor)

	end := now
	if dr == entity.DateRangeCustom && custom.EndDate != nil {
		end = *custom.EndDate
	}

	perDay := a.Views / int64(days)
	for i := days - 1; i >= 0; i-- {
		// 90%..120% weekly wave.
		views := perDay * int64(90+5*((days-i)%7)) / 100
		a.DailyViews = append(a.DailyViews, entity.DataPoint{
			Date:  end.AddDate(0, 0, -i).Truncate(24 * time.Hour),
			Views: views,
		})
	}

	return a
}

// span returns how many daily points to produce and the factor applied to 28 day totals.
func (s *Service) span(dr entity.DateRange, custom entity.CustomDateRange) (int, float64) {
	switch dr {
	case entity.DateRangeCustom:
		n, ok := query.DayCount(custom)
		if !ok {
			return 1, 0
		}

		return n, float64(n) / 28
	case entity.DateRange12h:
		return 1, rangeFactors[dr]
	case entity.DateRange7d:
		return 7, rangeFactors[dr]
	case entity.DateRangeAll:
		return maxAllTimeDays, rangeFactors[dr]
	}

	return 28, rangeFactors[entity.DateRange28d]
}

func scale(v int64, factor float64) int64 {
	return int64(float64(v) * factor)
}

func filterByChannel[T any](items []T, channelID *string, channelOf func(T) string) []T {
	res := make([]T, 0, len(items))
	for _, item := range items {
		if channelID == nil || channelOf(item) == *channelID {
			res = append(res, item)
		}
	}

	return res
}

func customKey(dr entity.DateRange, custom entity.CustomDateRange) string {
	if dr != entity.DateRangeCustom {
		return ""
	}

	var start, end int64
	if custom.StartDate != nil {
		start = custom.StartDate.Unix()
	}
	if custom.EndDate != nil {
		end = custom.EndDate.Unix()
	}

	return fmt.Sprintf(":%d-%d", start, end)
}

// Invalidate drops every cached response.
func (s *Service) Invalidate() {
	s.cache.invalidate()
	s.log.Debug("Cache invalidated")
}
