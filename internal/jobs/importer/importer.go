// Package importer bulk-loads address ranges from RIR-style delegation
// feeds: one range per line, tab-separated start, end, ASN and optional
// owner and locale columns.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"shrike/internal/domain"
	"shrike/internal/geolite"
	"shrike/internal/ipcodec"
)

const (
	seenSetKey     = "shrike:import:seen"
	defaultWorkers = 4
)

// RangeInserter is the slice of the range repository the importer needs.
type RangeInserter interface {
	Insert(ctx context.Context, rec *domain.AddressRange) error
}

// Stats summarizes one import run.
type Stats struct {
	Lines      int64
	Imported   int64
	Invalid    int64
	Duplicates int64
}

type Importer struct {
	repo     RangeInserter
	enricher *geolite.Enricher
	redis    *redis.Client
	workers  int

	seenMu sync.Mutex
	seen   map[string]struct{}
}

type Option func(*Importer)

// WithEnricher fills missing owner/locale columns from GeoLite data.
func WithEnricher(e *geolite.Enricher) Option {
	return func(imp *Importer) {
		imp.enricher = e
	}
}

// WithRedisClient dedupes lines against a shared redis set so re-running a
// feed, or running it from several instances, never double-imports. A nil
// client falls back to an in-process set.
func WithRedisClient(client *redis.Client) Option {
	return func(imp *Importer) {
		imp.redis = client
	}
}

func WithWorkers(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.workers = n
		}
	}
}

func New(repo RangeInserter, opts ...Option) *Importer {
	imp := &Importer{
		repo:    repo,
		workers: defaultWorkers,
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Run reads the feed to the end. Malformed or invalid lines are counted and
// logged, never fatal; only reader and storage failures abort the run.
func (imp *Importer) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var lines, imported, invalid, duplicates atomic.Int64

	records := make(chan *domain.AddressRange)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < imp.workers; i++ {
		g.Go(func() error {
			for rec := range records {
				err := imp.repo.Insert(ctx, rec)
				switch {
				case err == nil:
					imported.Add(1)
				case isValidationError(err):
					invalid.Add(1)
					log.Debug("Skipping invalid range", "start", rec.RangeStart, "end", rec.RangeEnd, "error", err)
				default:
					return fmt.Errorf("importer: insert range %s-%s: %w", rec.RangeStart, rec.RangeEnd, err)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(records)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines.Add(1)

			rec, err := parseLine(line)
			if err != nil {
				invalid.Add(1)
				log.Debug("Skipping malformed feed line", "line", line, "error", err)
				continue
			}

			fresh, err := imp.markSeen(ctx, rec)
			if err != nil {
				return err
			}
			if !fresh {
				duplicates.Add(1)
				continue
			}

			imp.enrich(rec)

			select {
			case records <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})

	err := g.Wait()

	stats := Stats{
		Lines:      lines.Load(),
		Imported:   imported.Load(),
		Invalid:    invalid.Load(),
		Duplicates: duplicates.Load(),
	}
	log.Info("Range import finished",
		"lines", stats.Lines,
		"imported", stats.Imported,
		"invalid", stats.Invalid,
		"duplicates", stats.Duplicates,
	)
	return stats, err
}

// parseLine splits "start<TAB>end<TAB>asn[<TAB>owner[<TAB>locale]]"; feeds
// that use runs of spaces instead of tabs are accepted too.
func parseLine(line string) (*domain.AddressRange, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		fields = strings.Fields(line)
	}
	if len(fields) < 3 {
		return nil, errors.New("importer: line has fewer than 3 columns")
	}

	asn, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("importer: bad asn column: %w", err)
	}

	rec := &domain.AddressRange{
		RangeStart: strings.TrimSpace(fields[0]),
		RangeEnd:   strings.TrimSpace(fields[1]),
		Number:     uint32(asn),
	}
	if len(fields) > 3 {
		rec.OwnerLabel = strings.TrimSpace(fields[3])
	}
	if len(fields) > 4 {
		rec.LocaleCode = strings.TrimSpace(fields[4])
	}
	return rec, nil
}

func (imp *Importer) enrich(rec *domain.AddressRange) {
	if imp.enricher == nil || (rec.OwnerLabel != "" && rec.LocaleCode != "") {
		return
	}
	addr, err := ipcodec.Parse(rec.RangeStart)
	if err != nil {
		return
	}
	owner, locale, ok := imp.enricher.OwnerFor(addr)
	if !ok {
		return
	}
	if rec.OwnerLabel == "" {
		rec.OwnerLabel = owner
	}
	if rec.LocaleCode == "" {
		rec.LocaleCode = locale
	}
}

// markSeen reports whether this identity is new. The redis set survives
// restarts and is shared between instances; without redis the run only
// dedupes against itself.
func (imp *Importer) markSeen(ctx context.Context, rec *domain.AddressRange) (bool, error) {
	member := fmt.Sprintf("%s|%s|%d", rec.RangeStart, rec.RangeEnd, rec.Number)

	if imp.redis != nil {
		added, err := imp.redis.SAdd(ctx, seenSetKey, member).Result()
		if err != nil {
			return false, fmt.Errorf("importer: redis dedupe: %w", err)
		}
		return added > 0, nil
	}

	imp.seenMu.Lock()
	defer imp.seenMu.Unlock()
	if _, dup := imp.seen[member]; dup {
		return false, nil
	}
	imp.seen[member] = struct{}{}
	return true, nil
}

func isValidationError(err error) bool {
	var verrs domain.ValidationErrors
	return errors.As(err, &verrs)
}
