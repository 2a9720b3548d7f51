package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/metrics"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/spreadsheet"
	"github.com/hshy1839/seongji-erp-server/internal/store"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

// Locker serializes non-dry-run uploads of one resource.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Archiver keeps a copy of every stored upload.
type Archiver interface {
	Archive(ctx context.Context, resource, dayKey, filename string, data []byte) (string, error)
}

// IngestDefaults are the configured fallbacks for values an upload does not carry.
type IngestDefaults struct {
	OrderCompany    string
	Requester       string
	TZOffsetMinutes int
	BatchSize       int
}

// IngestOptions are the per-upload switches. Zero values mean the documented default.
type IngestOptions struct {
	DryRun bool
	// TZOffsetMinutes overrides the upload-day offset; nil uses the configured one.
	TZOffsetMinutes *int
	// Orders: company used when the row has none.
	DefaultCompany string
	// Shipments: date used when the row or the whole column has none.
	DefaultShippingDate *time.Time
	// Stocks: nil or true books the sheet quantity as opening and resets the other counters.
	OpenAsOpening *bool
	// Shortages: drop today's uploaded rows before upserting.
	OverwriteToday bool
	// Productions.
	Mode  models.ProductionMode
	Month string
	// Deliveries: recorded as the creator.
	CreatedBy string
}

func (o IngestOptions) offset(def int) int {
	if o.TZOffsetMinutes != nil {
		return *o.TZOffsetMinutes
	}
	return def
}

// IngestService turns uploaded workbooks into persisted records and per-row reports.
type IngestService struct {
	Store    store.Store
	Ledger   *Ledger
	Locker   Locker
	Archiver Archiver
	Log      logrus.FieldLogger
	Now      func() time.Time
	Defaults IngestDefaults
}

func NewIngestService(st store.Store, ledger *Ledger, locker Locker, log logrus.FieldLogger, defaults IngestDefaults) *IngestService {
	if defaults.BatchSize < 1 {
		defaults.BatchSize = 1000
	}
	return &IngestService{Store: st, Ledger: ledger, Locker: locker, Log: log, Now: utcNow, Defaults: defaults}
}

// resolve decodes the workbook, picks the sheet and resolves its header.
func (s *IngestService) resolve(op string, schema *spreadsheet.Schema, data []byte, filename string, log logrus.FieldLogger, waive ...string) (*spreadsheet.Sheet, *spreadsheet.Header, error) {
	wb, err := spreadsheet.Read(data, filename)
	if err != nil {
		return nil, nil, E(KindStructural, op, err)
	}
	sheet, err := schema.SelectSheet(wb)
	if err != nil {
		return nil, nil, E(KindStructural, op, err)
	}
	h, err := schema.Resolve(sheet.Rows, waive...)
	if err != nil {
		var he *spreadsheet.HeaderError
		if errors.As(err, &he) {
			log.WithFields(logrus.Fields{"sheet": sheet.Name, "profile": he.Profile, "missing": he.Missing}).
				Error("[Ingest] required headers missing\n" + he.Diagnostic)
		}
		return nil, nil, E(KindStructural, op, err)
	}
	log.WithFields(logrus.Fields{"sheet": sheet.Name, "profile": h.Profile.Name, "headerRow": h.Row}).
		Debug("[Ingest] header resolved")
	return sheet, h, nil
}

func (s *IngestService) lock(ctx context.Context, op, resource string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	unlock, err := s.Locker.Lock(ctx, "upload:"+resource)
	if err != nil {
		return nil, &Error{Kind: KindConflict, Op: op, Err: fmt.Errorf("another %s upload is in progress: %w", resource, err)}
	}
	return unlock, nil
}

// archive stores the upload when an archiver is configured. Failures are only logged.
func (s *IngestService) archive(ctx context.Context, resource string, day timeutil.DayWindow, filename string, data []byte) {
	if s.Archiver == nil {
		return
	}
	key, err := s.Archiver.Archive(ctx, resource, day.Key, filename, data)
	if err != nil {
		config.LogError(s.Log, "services", "ingest.archive", err, logrus.Fields{"resource": resource, "dayKey": day.Key})
		return
	}
	s.Log.WithFields(logrus.Fields{"resource": resource, "key": key}).Info("[Ingest] upload archived")
}

func observe(resource string, started time.Time, success, failed int) {
	metrics.IngestDuration.WithLabelValues(resource).Observe(time.Since(started).Seconds())
	metrics.IngestRows.WithLabelValues(resource, "success").Add(float64(success))
	metrics.IngestRows.WithLabelValues(resource, "failed").Add(float64(failed))
}

func (s *IngestService) fail(op, resource string, err error, fields logrus.Fields) error {
	kind := KindOf(err)
	if kind == KindStructural {
		metrics.IngestRuns.WithLabelValues(resource, "structural").Inc()
	} else {
		metrics.IngestRuns.WithLabelValues(resource, "failed").Inc()
		config.LogError(s.Log, "services", op, err, fields)
	}
	return classify(op, err)
}

func runResult(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "ok"
}

// rowContext is what a row mapper may consult besides the row itself.
type rowContext struct {
	Header   *spreadsheet.Header
	Now      time.Time
	Day      timeutil.DayWindow
	Opts     IngestOptions
	Defaults IngestDefaults
}

// DayDate is the upload day as a UTC-midnight date.
func (c *rowContext) DayDate() time.Time {
	d, _ := time.Parse(timeutil.DateLayout, c.Day.Key)
	return d
}

// insertPlan describes an insert-based resource: rows become new records that replace the
// records uploaded earlier on the same upload day.
type insertPlan[T any] struct {
	resource string
	schema   *spreadsheet.Schema
	waive    []string
	mapRow   func(c *rowContext, r spreadsheet.Row) (T, error)
	repo     func(tx store.Repositories) store.Batch[T]
	stamp    func(rec *T, now time.Time)
	// reverse and apply keep a derived ledger in step; both nil when the resource has none.
	reverse func(ctx context.Context, tx store.Repositories, old []T, now time.Time, out *models.LedgerOutcome) error
	apply   func(ctx context.Context, tx store.Repositories, recs []T, now time.Time, out *models.LedgerOutcome) error
}

func runInsert[T any](ctx context.Context, s *IngestService, p insertPlan[T], data []byte, filename string, opts IngestOptions) (*models.IngestReport, error) {
	op := "ingest." + p.resource
	started := time.Now()
	now := s.Now()
	day := timeutil.UploadDay(now, opts.offset(s.Defaults.TZOffsetMinutes))
	log := s.Log.WithFields(logrus.Fields{"resource": p.resource, "dryRun": opts.DryRun, "dayKey": day.Key})

	sheet, h, err := s.resolve(op, p.schema, data, filename, log, p.waive...)
	if err != nil {
		return nil, s.fail(op, p.resource, err, nil)
	}

	report := &models.IngestReport{
		OK:              true,
		Resource:        p.resource,
		DryRun:          opts.DryRun,
		Sheet:           sheet.Name,
		Profile:         h.Profile.Name,
		Errors:          []models.RowError{},
		InsertedIDs:     []uuid.UUID{},
		OverwriteDayKey: day.Key,
	}

	rc := &rowContext{Header: h, Now: now, Day: day, Opts: opts, Defaults: s.Defaults}
	var recs []T
	report.TotalRows = h.DataRows(sheet.Rows, func(r spreadsheet.Row) {
		rec, err := p.mapRow(rc, r)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, models.RowError{Row: r.Number, Message: err.Error()})
			return
		}
		report.Success++
		recs = append(recs, rec)
	})
	defer observe(p.resource, started, report.Success, report.Failed)

	if opts.DryRun || len(recs) == 0 {
		log.WithFields(logrus.Fields{"success": report.Success, "failed": report.Failed}).
			Info("[Ingest] parsed without persisting")
		metrics.IngestRuns.WithLabelValues(p.resource, runResult(opts.DryRun)).Inc()
		return report, nil
	}

	unlock, err := s.lock(ctx, op, p.resource)
	if err != nil {
		return nil, s.fail(op, p.resource, err, nil)
	}
	defer unlock()

	for i := range recs {
		p.stamp(&recs[i], now)
	}
	var ledger *models.LedgerOutcome
	if p.apply != nil {
		ledger = &models.LedgerOutcome{}
	}

	var (
		deleted int64
		ids     []uuid.UUID
	)
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		repo := p.repo(tx)
		if p.reverse != nil {
			old, err := repo.ListCreatedBetween(ctx, day.Start, day.End)
			if err != nil {
				return fmt.Errorf("failed to load today's %s: %w", p.resource, err)
			}
			if err := p.reverse(ctx, tx, old, now, ledger); err != nil {
				return err
			}
		}

		var err error
		deleted, err = repo.DeleteCreatedBetween(ctx, day.Start, day.End)
		if err != nil {
			return fmt.Errorf("failed to delete today's %s: %w", p.resource, err)
		}

		if p.apply != nil {
			if err := p.apply(ctx, tx, recs, now, ledger); err != nil {
				return err
			}
		}

		ids = make([]uuid.UUID, 0, len(recs))
		for i := 0; i < len(recs); i += s.Defaults.BatchSize {
			j := min(i+s.Defaults.BatchSize, len(recs))
			got, err := repo.InsertMany(ctx, recs[i:j])
			if err != nil {
				return fmt.Errorf("failed to insert %s: %w", p.resource, err)
			}
			ids = append(ids, got...)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(op, p.resource, err, logrus.Fields{"dayKey": day.Key})
	}

	report.OverwriteByCreatedAtDay = deleted > 0
	report.InsertedIDs = ids
	report.Ledger = ledger
	log.WithFields(logrus.Fields{
		"inserted": len(ids),
		"replaced": deleted,
		"failed":   report.Failed,
	}).Info("[Ingest] upload stored")
	metrics.IngestRuns.WithLabelValues(p.resource, "ok").Inc()
	s.archive(ctx, p.resource, day, filename, data)
	return report, nil
}

// rowErr is a row-level validation message.
func rowErr(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
