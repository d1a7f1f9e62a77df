package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"helio/pharmacy/domain"
	"helio/pharmacy/internal/search"
	"helio/pharmacy/internal/stock"
)

// DefaultConfirmTTL bounds how long a delete confirmation token stays valid.
const DefaultConfirmTTL = 5 * time.Minute

// Service is the single owner of the medicine collection. Every view reads
// and writes through it.
type Service struct {
	repo       Repository
	log        zerolog.Logger
	now        func() time.Time
	confirmTTL time.Duration

	// writeMu serialises read-modify-write cycles against repo.
	writeMu sync.Mutex

	mu      sync.Mutex
	edits   map[string]*Draft
	pending map[uuid.UUID]PendingDeletion
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "inventory").Logger() }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithConfirmTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.confirmTTL = ttl
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		log:        zerolog.Nop(),
		now:        time.Now,
		confirmTTL: DefaultConfirmTTL,
		edits:      make(map[string]*Draft),
		pending:    make(map[uuid.UUID]PendingDeletion),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock, so derived expiry flags agree with it.
func (s *Service) Now() time.Time {
	return s.now()
}

// Add validates n and appends it with the next id.
func (s *Service) Add(ctx context.Context, n NewMedicine) (domain.Medicine, error) {
	m := n.record()
	if err := validate(&m); err != nil {
		return domain.Medicine{}, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	stored, err := s.repo.Insert(ctx, m)
	if err != nil {
		return domain.Medicine{}, err
	}
	s.log.Info().Int64("medicine_id", stored.ID).Str("name", stored.Name).
		Str("status", string(stored.Status())).Msg("medicine added")
	return stored, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Medicine, error) {
	return s.repo.Get(ctx, id)
}

// Update merges p into the stored record and replaces it in place.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (domain.Medicine, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Medicine{}, err
	}
	return s.replace(ctx, p.Apply(current))
}

// replace validates and stores m. Callers hold writeMu.
func (s *Service) replace(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	if err := validate(&m); err != nil {
		return domain.Medicine{}, err
	}
	stored, err := s.repo.Replace(ctx, m)
	if err != nil {
		return domain.Medicine{}, err
	}
	s.log.Info().Int64("medicine_id", stored.ID).Int64("stock", stored.Stock).
		Str("status", string(stored.Status())).Msg("medicine updated")
	return stored, nil
}

// Remove deletes id. Removing a missing id is a no-op.
func (s *Service) Remove(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.dropEdits(id)
	s.log.Info().Int64("medicine_id", id).Msg("medicine removed")
	return nil
}

// List returns the medicines matching q in insertion order.
func (s *Service) List(ctx context.Context, q Query) ([]domain.Medicine, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items = search.Filter(items, q.Text, domain.Medicine.SearchFields)
	if q.Status == "" && q.ExpiringWithin <= 0 {
		return items, nil
	}
	now := s.now()
	out := make([]domain.Medicine, 0, len(items))
	for _, m := range items {
		if q.Status != "" && m.Status() != q.Status {
			continue
		}
		if q.ExpiringWithin > 0 && !expiringWithin(m, now, q.ExpiringWithin) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Count returns the number of stored medicines.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Categories lists the distinct non-empty categories in name order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range items {
		if m.Category == "" {
			continue
		}
		key := strings.ToLower(m.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m.Category)
	}
	sort.Strings(out)
	return out, nil
}

// Stats counts medicines per status and within the expiry window.
func (s *Service) Stats(ctx context.Context, window time.Duration) (Stats, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	var st Stats
	for _, m := range items {
		st.Add(m.Status())
		exp, err := m.Expiry()
		if err != nil {
			continue
		}
		if stock.Expired(exp, now) {
			st.Expired++
		}
		if stock.ExpiringSoon(exp, now, window) {
			st.ExpiringSoon++
		}
	}
	return st, nil
}

// LowStock returns low and out of stock medicines, largest shortage first.
func (s *Service) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Medicine, 0)
	for _, m := range items {
		if m.Status() != stock.InStock {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Expiring returns medicines expiring within window, soonest first.
func (s *Service) Expiring(ctx context.Context, window time.Duration) ([]domain.Medicine, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.Medicine, 0)
	for _, m := range items {
		if expiringWithin(m, now, window) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate < out[j].ExpiryDate
	})
	return out, nil
}

func expiringWithin(m domain.Medicine, now time.Time, window time.Duration) bool {
	exp, err := m.Expiry()
	if err != nil {
		return false
	}
	return stock.ExpiringSoon(exp, now, window)
}
