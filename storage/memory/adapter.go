package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/nbprates/storage"
	"github.com/sig-0/nbprates/storage/types"
)

// key identifies a single published data point
type key struct {
	base, target, source, rateType string
	asOf                           int64 // unix nanos
}

// bucket groups data points that compete for the as-of lookup
type bucket struct {
	target, source, rateType string
}

// Storage is an in-memory rate store, suitable for a single process
type Storage struct {
	data map[key]types.ExchangeRate

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]types.ExchangeRate),
	}
}

func (s *Storage) SaveExchangeRate(_ context.Context, r *types.ExchangeRate) error {
	elem := *r
	elem.AsOf = elem.AsOf.UTC()
	elem.FetchedAt = elem.FetchedAt.UTC()

	k := key{
		base:     elem.Base.String(),
		target:   elem.Target.String(),
		source:   elem.Source.String(),
		rateType: elem.RateType.String(),
		asOf:     elem.AsOf.UnixNano(),
	}

	s.mu.Lock()
	s.data[k] = elem // re-ingesting a day overwrites it
	s.mu.Unlock()

	return nil
}

func (s *Storage) RateAsOf(
	_ context.Context,
	query *types.RateQuery,
	asOf time.Time,
) (*types.Page[*types.ExchangeRate], error) {
	cutoff := asOf.UTC()
	latest := make(map[bucket]types.ExchangeRate)

	s.mu.RLock()

	for _, v := range s.data {
		if !matches(query, &v) || v.AsOf.After(cutoff) {
			continue
		}

		b := bucket{
			target:   v.Target.String(),
			source:   v.Source.String(),
			rateType: v.RateType.String(),
		}

		// newer publications win, ties go to the latest fetch
		cur, ok := latest[b]
		if !ok ||
			v.AsOf.After(cur.AsOf) ||
			(v.AsOf.Equal(cur.AsOf) && v.FetchedAt.After(cur.FetchedAt)) {
			latest[b] = v
		}
	}

	s.mu.RUnlock()

	out := make([]*types.ExchangeRate, 0, len(latest))
	for _, v := range latest {
		out = append(out, &v)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}

		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}

		return out[i].RateType < out[j].RateType
	})

	return paginate(out, query.Limit, query.Offset), nil
}

func (s *Storage) RatesInRange(
	_ context.Context,
	pair types.Pair,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	from, to = from.UTC(), to.UTC()

	var out []*types.ExchangeRate

	s.mu.RLock()

	for _, v := range s.data {
		if v.Base != pair.Base || v.Target != pair.Target {
			continue
		}

		if v.AsOf.Before(from) || v.AsOf.After(to) {
			continue
		}

		out = append(out, &v)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].AsOf.Equal(out[j].AsOf) {
			return out[i].AsOf.Before(out[j].AsOf)
		}

		return out[i].Source < out[j].Source
	})

	return out, nil
}

func (s *Storage) ListSources(_ context.Context) ([]types.Source, error) {
	s.mu.RLock()

	seen := make(map[types.Source]struct{})

	for k := range s.data {
		seen[types.Source(k.source)] = struct{}{}
	}

	s.mu.RUnlock()

	return sortedKeys(seen), nil
}

func (s *Storage) ListCurrencies(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[types.Currency]struct{})

	for k := range s.data {
		seen[types.Currency(k.base)] = struct{}{}
		seen[types.Currency(k.target)] = struct{}{}
	}

	s.mu.RUnlock()

	return sortedKeys(seen), nil
}

// matches checks the rate against the query filters
func matches(query *types.RateQuery, r *types.ExchangeRate) bool {
	if r.Base != query.Base {
		return false
	}

	if query.Target != nil && r.Target != *query.Target {
		return false
	}

	if query.Source != nil && r.Source != *query.Source {
		return false
	}

	if query.RateType != nil && r.RateType != *query.RateType {
		return false
	}

	return true
}

// paginate returns the requested window of the results
func paginate[T any](all []T, limit int32, offset int64) *types.Page[T] {
	total := int64(len(all))
	limit = storage.NormalizeLimit(limit)

	if total == 0 || offset >= total || offset < 0 {
		return &types.Page[T]{
			Results: nil,
			Total:   total,
		}
	}

	end := min(offset+int64(limit), total)

	return &types.Page[T]{
		Results: all[offset:end],
		Total:   total,
	}
}

func sortedKeys[T ~string](set map[T]struct{}) []T {
	out := make([]T, 0, len(set))

	for v := range set {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})

	return out
}
