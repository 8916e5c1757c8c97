package app

import (
	"context"
	"sync"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/ports"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a loaded spreadsheet is served from memory
const DefaultCacheTTL = time.Hour

type cachedLoad struct {
	tables   *sheet.Collection
	report   sheet.LoadReport
	loadedAt time.Time
}

// LoaderService fetches a spreadsheet, cleans every worksheet and memoizes
// the result per spreadsheet id.
type LoaderService struct {
	source    ports.SheetSource
	assembler *Assembler
	ttl       time.Duration
	logger    *internal.Logger
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedLoad
	group singleflight.Group
}

// NewLoaderService creates a loader. A non-positive ttl uses DefaultCacheTTL.
func NewLoaderService(source ports.SheetSource, assembler *Assembler, ttl time.Duration, logger *internal.Logger) *LoaderService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &LoaderService{
		source:    source,
		assembler: assembler,
		ttl:       ttl,
		logger:    logger.With("Loader"),
		now:       time.Now,
		cache:     make(map[string]cachedLoad),
	}
}

// Load returns the cleaned tables of a spreadsheet. Concurrent callers for
// the same id share one fetch; a failed load caches nothing. The shared fetch
// outlives the cancellation of whichever caller started it.
func (s *LoaderService) Load(ctx context.Context, spreadsheetID string) (*sheet.Collection, sheet.LoadReport, error) {
	if entry, ok := s.cached(spreadsheetID); ok {
		return entry.tables, entry.report, nil
	}

	v, err, shared := s.group.Do(spreadsheetID, func() (interface{}, error) {
		if entry, ok := s.cached(spreadsheetID); ok {
			return entry, nil
		}
		return s.fetch(context.WithoutCancel(ctx), spreadsheetID)
	})
	if err != nil {
		return nil, sheet.LoadReport{}, err
	}
	if shared {
		s.logger.Trace("joined in-flight load of %s", spreadsheetID)
	}

	entry := v.(cachedLoad)
	return entry.tables, entry.report, nil
}

// Refresh drops every cached load and reloads the given spreadsheet
func (s *LoaderService) Refresh(ctx context.Context, spreadsheetID string) (*sheet.Collection, sheet.LoadReport, error) {
	s.mu.Lock()
	s.cache = make(map[string]cachedLoad)
	s.mu.Unlock()
	s.group.Forget(spreadsheetID)

	s.logger.Info("cache cleared, reloading %s", spreadsheetID)
	return s.Load(ctx, spreadsheetID)
}

// Invalidate drops the cached load of one spreadsheet
func (s *LoaderService) Invalidate(spreadsheetID string) {
	s.mu.Lock()
	delete(s.cache, spreadsheetID)
	s.mu.Unlock()
	s.group.Forget(spreadsheetID)
}

// LoadedAt reports when the cached load of a spreadsheet was fetched
func (s *LoaderService) LoadedAt(spreadsheetID string) (time.Time, bool) {
	entry, ok := s.cached(spreadsheetID)
	return entry.loadedAt, ok
}

func (s *LoaderService) cached(spreadsheetID string) (cachedLoad, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[spreadsheetID]
	if !ok || s.now().Sub(entry.loadedAt) >= s.ttl {
		return cachedLoad{}, false
	}
	return entry, true
}

func (s *LoaderService) fetch(ctx context.Context, spreadsheetID string) (cachedLoad, error) {
	start := s.now()

	worksheets, err := s.source.Worksheets(ctx, spreadsheetID)
	if err != nil {
		s.logger.Error("source unavailable for %s: %v", spreadsheetID, err)
		return cachedLoad{}, errors.SourceUnavailable(spreadsheetID, err)
	}

	tables, report, err := s.assembler.AssembleAll(worksheets)
	if err != nil {
		return cachedLoad{}, err
	}

	entry := cachedLoad{tables: tables, report: report, loadedAt: s.now()}
	s.mu.Lock()
	s.cache[spreadsheetID] = entry
	s.mu.Unlock()

	s.logger.Info("loaded %s: %d table(s) from %d worksheet(s) in %v",
		spreadsheetID, tables.Len(), len(worksheets), s.now().Sub(start))
	return entry, nil
}
