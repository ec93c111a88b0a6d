package report

import (
	"bytes"
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/compose"
	"wolt-report-service/internal/orders"
	"wolt-report-service/internal/storage"
)

type Config struct {
	Format     compose.Format
	Window     orders.Window
	ZonePolicy aggregate.ZonePolicy
}

type Service struct {
	cfg      Config
	composer *compose.Composer
	store    storage.Store
	registry Registry
	events   Publisher
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithRegistry(r Registry) Option {
	return func(s *Service) { s.registry = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(cfg Config, composer *compose.Composer, store storage.Store, logger *zap.Logger, opts ...Option) *Service {
	if cfg.Format == "" {
		cfg.Format = compose.FormatPNG
	}
	if cfg.Window == nil {
		cfg.Window = orders.RollingWindow
	}
	if cfg.ZonePolicy == "" {
		cfg.ZonePolicy = aggregate.ZoneSkip
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:      cfg,
		composer: composer,
		store:    store,
		registry: NewMemoryRegistry(defaultMemoryEntries),
		logger:   logger,
		now:      time.Now,
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepared is the aggregated view of one batch before rendering.
type Prepared struct {
	Result  aggregate.Result
	Skipped []aggregate.Skipped
}

func (p Prepared) SkippedIDs() []string {
	if len(p.Skipped) == 0 {
		return nil
	}
	ids := make([]string, 0, len(p.Skipped))
	for _, s := range p.Skipped {
		ids = append(ids, s.OrderID)
	}
	return ids
}

// Prepare runs every stage up to aggregation.
func (s *Service) Prepare(ctx context.Context, blobs [][]byte) (Prepared, error) {
	if err := ctx.Err(); err != nil {
		return Prepared{}, err
	}
	normalized, err := orders.Normalize(blobs)
	if err != nil {
		return Prepared{}, err
	}
	eligible := orders.Filter(normalized, s.cfg.Window(s.now()))
	bucketed, skipped, err := aggregate.Bucket(eligible, s.cfg.ZonePolicy)
	if err != nil {
		return Prepared{}, err
	}
	for _, sk := range skipped {
		s.logger.Warn("order skipped: unrecognized venue timezone",
			zap.String("orderId", sk.OrderID),
			zap.String("timezone", sk.Zone),
		)
	}
	s.logger.Debug("orders prepared",
		zap.Int("normalized", len(normalized)),
		zap.Int("eligible", len(eligible)),
		zap.Int("bucketed", len(bucketed)),
	)
	return Prepared{Result: aggregate.Aggregate(bucketed), Skipped: skipped}, nil
}

// Generate builds, renders and persists one report. Nothing is stored when
// any stage fails.
func (s *Service) Generate(ctx context.Context, blobs [][]byte) (*Report, error) {
	started := s.now()
	prepared, err := s.Prepare(ctx, blobs)
	if err != nil {
		return nil, err
	}
	res := prepared.Result

	img, err := s.composer.Compose(ctx, res, res.Headline())
	if err != nil {
		return nil, errors.Wrap(err, "compose report")
	}
	var buf bytes.Buffer
	if err := compose.Encode(&buf, img, s.cfg.Format); err != nil {
		return nil, err
	}

	id := s.newID()
	key := id + "." + s.cfg.Format.Ext()
	location, err := s.store.Put(ctx, key, buf.Bytes(), s.cfg.Format.ContentType())
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:         id,
		Format:     s.cfg.Format,
		Key:        key,
		Location:   location,
		OrderCount: res.OrderCount,
		Currencies: currencies(res),
		Skipped:    prepared.SkippedIDs(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.registry.Save(ctx, *rep); err != nil {
		s.logger.Warn("report metadata not saved", zap.String("guid", id), zap.Error(err))
	}
	if s.events != nil {
		if err := s.events.PublishReportGenerated(ctx, *rep); err != nil {
			s.logger.Warn("report event not published", zap.String("guid", id), zap.Error(err))
		}
	}

	s.logger.Info("report generated",
		zap.String("guid", id),
		zap.Int("orders", rep.OrderCount),
		zap.Int("skipped", len(rep.Skipped)),
		zap.String("location", location),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	return rep, nil
}

func (s *Service) Lookup(ctx context.Context, id string) (*Report, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	return s.registry.Get(ctx, id)
}

// Open returns the stored artifact bytes of a report.
func (s *Service) Open(ctx context.Context, id string) ([]byte, *Report, error) {
	rep, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.Get(ctx, rep.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return data, rep, nil
}

func currencies(res aggregate.Result) []string {
	out := make([]string, 0, len(res.Totals))
	for _, t := range res.Totals {
		out = append(out, t.Currency)
	}
	return out
}
