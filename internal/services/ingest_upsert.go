package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/metrics"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/spreadsheet"
	"github.com/hshy1839/seongji-erp-server/internal/store"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

var errNothingWritten = errors.New("no row written")

// upsertRun is the shared state of one bulk-upsert ingestion.
type upsertRun struct {
	op      string
	started time.Time
	now     time.Time
	day     timeutil.DayWindow
	log     logrus.FieldLogger
	sheet   *spreadsheet.Sheet
	header  *spreadsheet.Header
	report  *models.UpsertReport
}

func (s *IngestService) startUpsert(resource string, schema *spreadsheet.Schema, data []byte, filename string, opts IngestOptions) (*upsertRun, error) {
	op := "ingest." + resource
	now := s.Now()
	day := timeutil.UploadDay(now, opts.offset(s.Defaults.TZOffsetMinutes))
	log := s.Log.WithFields(logrus.Fields{"resource": resource, "dryRun": opts.DryRun, "dayKey": day.Key})

	sheet, h, err := s.resolve(op, schema, data, filename, log)
	if err != nil {
		return nil, s.fail(op, resource, err, nil)
	}
	return &upsertRun{
		op:      op,
		started: time.Now(),
		now:     now,
		day:     day,
		log:     log,
		sheet:   sheet,
		header:  h,
		report: &models.UpsertReport{
			OK:       true,
			Resource: resource,
			DryRun:   opts.DryRun,
			Sheet:    sheet.Name,
			Results:  []models.UpsertResult{},
			Errors:   []models.UpsertError{},
		},
	}, nil
}

// queue records a parsed row as queued, or validated on a dry run.
func (u *upsertRun) queue(row int) {
	status := models.RowQueued
	if u.report.DryRun {
		status = models.RowValidated
	}
	u.report.Add(row, status)
}

func (u *upsertRun) finish() {
	observe(u.report.Resource, u.started, u.report.Success, u.report.Failed)
	metrics.IngestRuns.WithLabelValues(u.report.Resource, runResult(u.report.DryRun)).Inc()
	u.log.WithFields(logrus.Fields{
		"total":   u.report.TotalRows,
		"success": u.report.Success,
		"failed":  u.report.Failed,
	}).Info("[Ingest] upsert finished")
}

// optionalDecimal is nil for an empty cell or a missing column.
func optionalDecimal(r spreadsheet.Row, field string) (*decimal.Decimal, error) {
	raw := r.Text(field)
	if raw == "" {
		return nil, nil
	}
	d, ok := r.Decimal(field)
	if !ok {
		return nil, rowErr("invalid %s %q", field, raw)
	}
	return &d, nil
}

func zeroIfNil(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		z := decimal.Zero
		return &z
	}
	return d
}

func mapStock(r spreadsheet.Row, openAsOpening bool) (*models.StockRequest, error) {
	req := &models.StockRequest{
		StockKey: models.StockKey{
			Customer:     r.Text("customer"),
			CarType:      r.Text("carType"),
			DeliveryTo:   r.Text("deliveryTo"),
			Division:     r.Text("division"),
			PartNumber:   r.Text("partNumber"),
			MaterialCode: r.Text("materialCode"),
		},
		MaterialName: r.Text("materialName"),
		UOM:          r.Text("uom"),
		Remark:       r.Text("remark"),
	}
	var missing []string
	for _, f := range [][2]string{
		{"customer", req.Customer}, {"carType", req.CarType}, {"deliveryTo", req.DeliveryTo},
		{"division", req.Division}, {"partNumber", req.PartNumber}, {"materialCode", req.MaterialCode},
	} {
		if f[1] == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return nil, rowErr("key fields missing: %s", strings.Join(missing, ", "))
	}

	var current *decimal.Decimal
	for _, f := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"currentQty", &current},
		{"openingQty", &req.OpeningQty},
		{"inboundQty", &req.InboundQty},
		{"usedQty", &req.UsedQty},
		{"bomQtyPer", &req.BomQtyPer},
	} {
		d, err := optionalDecimal(r, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = d
	}

	// Without a current quantity only the counters present on the sheet are written.
	if openAsOpening && current != nil {
		req.OpeningQty = current
		req.InboundQty = zeroIfNil(req.InboundQty)
		req.UsedQty = zeroIfNil(req.UsedQty)
	}
	return req, nil
}

// IngestStocks upserts one stock row per sheet row by natural key. Each row commits on its own.
func (s *IngestService) IngestStocks(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.UpsertReport, error) {
	run, err := s.startUpsert("stocks", stockSchema(), data, filename, opts)
	if err != nil {
		return nil, err
	}
	openAsOpening := opts.OpenAsOpening == nil || *opts.OpenAsOpening

	type pending struct {
		row int
		req *models.StockRequest
	}
	var queue []pending
	run.report.TotalRows = run.header.DataRows(run.sheet.Rows, func(r spreadsheet.Row) {
		req, err := mapStock(r, openAsOpening)
		if err != nil {
			run.report.Fail(r.Number, err.Error())
			return
		}
		run.queue(r.Number)
		queue = append(queue, pending{row: r.Number, req: req})
	})
	defer run.finish()
	if opts.DryRun || len(queue) == 0 {
		return run.report, nil
	}

	unlock, err := s.lock(ctx, run.op, "stocks")
	if err != nil {
		return nil, s.fail(run.op, "stocks", err, nil)
	}
	defer unlock()

	for _, p := range queue {
		var stock *models.Stock
		err := s.Store.WithTx(ctx, func(tx store.Repositories) (err error) {
			stock, err = upsertStock(ctx, tx, p.req, run.now)
			return err
		})
		if err != nil {
			run.log.WithFields(logrus.Fields{"row": p.row, "error": err}).Warn("[Ingest] stock row not written")
			run.report.Fail(p.row, err.Error())
			continue
		}
		run.report.Upserted(p.row, stock.ID)
	}
	s.archive(ctx, "stocks", run.day, filename, data)
	return run.report, nil
}

// IngestShortages upserts shortage rows by key, optionally dropping the rows uploaded earlier
// the same day first.
func (s *IngestService) IngestShortages(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.UpsertReport, error) {
	run, err := s.startUpsert("shortages", shortageSchema(), data, filename, opts)
	if err != nil {
		return nil, err
	}

	type pending struct {
		row int
		up  *models.ShortageUpsert
	}
	var queue []pending
	run.report.TotalRows = run.header.DataRows(run.sheet.Rows, func(r spreadsheet.Row) {
		up := &models.ShortageUpsert{
			ShortageKey: models.ShortageKey{
				Division:     r.Text("division"),
				Material:     r.Text("material"),
				MaterialCode: r.Text("materialCode"),
			},
			At: run.now,
		}
		var missing []string
		for _, f := range [][2]string{{"division", up.Division}, {"material", up.Material}, {"materialCode", up.MaterialCode}} {
			if f[1] == "" {
				missing = append(missing, f[0])
			}
		}
		if len(missing) > 0 {
			run.report.Fail(r.Number, fmt.Sprintf("required fields missing: %s", strings.Join(missing, ", ")))
			return
		}
		if v := r.Text("supplier"); v != "" {
			up.Supplier = &v
		}
		var err error
		if up.InQty, err = optionalDecimal(r, "inQty"); err != nil {
			run.report.Fail(r.Number, err.Error())
			return
		}
		if up.StockQty, err = optionalDecimal(r, "stockQty"); err != nil {
			run.report.Fail(r.Number, err.Error())
			return
		}
		run.queue(r.Number)
		queue = append(queue, pending{row: r.Number, up: up})
	})
	defer run.finish()
	if opts.DryRun {
		return run.report, nil
	}

	unlock, err := s.lock(ctx, run.op, "shortages")
	if err != nil {
		return nil, s.fail(run.op, "shortages", err, nil)
	}
	defer unlock()

	// Today's rows are only dropped together with a successful write of at least one row.
	type outcome struct {
		id  uuid.UUID
		err error
	}
	outcomes := make([]outcome, len(queue))
	var deleted int64
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		if opts.OverwriteToday {
			n, err := tx.Shortages().DeleteCreatedBetween(ctx, run.day.Start, run.day.End)
			if err != nil {
				return fmt.Errorf("failed to delete today's shortages: %w", err)
			}
			deleted = n
		}
		written := 0
		for i, p := range queue {
			id, err := tx.Shortages().Upsert(ctx, p.up)
			outcomes[i] = outcome{id: id, err: err}
			if err == nil {
				written++
			}
		}
		if written == 0 && deleted > 0 {
			return errNothingWritten
		}
		return nil
	})
	kept := errors.Is(err, errNothingWritten)
	if err != nil && !kept {
		return nil, s.fail(run.op, "shortages", err, logrus.Fields{"dayKey": run.day.Key})
	}
	if kept {
		run.log.WithField("deleted", deleted).Warn("[Ingest] no shortage row written, today's rows kept")
	} else if opts.OverwriteToday {
		run.report.OverwriteByCreatedAtDay = deleted > 0
		run.report.OverwriteDayKey = run.day.Key
	}

	for i, p := range queue {
		if err := outcomes[i].err; err != nil {
			run.log.WithFields(logrus.Fields{"row": p.row, "error": err}).Warn("[Ingest] shortage row not written")
			run.report.Fail(p.row, err.Error())
			continue
		}
		run.report.Upserted(p.row, outcomes[i].id)
	}
	if len(queue) > 0 && !kept {
		s.archive(ctx, "shortages", run.day, filename, data)
	}
	return run.report, nil
}

// IngestProductions writes the month's required quantities, replacing or adding to them, and
// reports the month's per-division summary.
func (s *IngestService) IngestProductions(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.UpsertReport, error) {
	const op = "ingest.productions"
	mode := opts.Mode
	if mode == "" {
		mode = models.ProductionReplace
	}
	if mode != models.ProductionReplace && mode != models.ProductionIncrement {
		return nil, &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf("mode must be REPLACE or INC, got %q", opts.Mode)}
	}
	month := opts.Month
	if month == "" {
		month = timeutil.MonthKey(s.Now(), opts.offset(s.Defaults.TZOffsetMinutes))
	}
	if err := validMonth(op, month); err != nil {
		return nil, err
	}

	run, err := s.startUpsert("productions", productionSchema(), data, filename, opts)
	if err != nil {
		return nil, err
	}
	run.report.MonthKey = month
	run.report.Mode = mode

	type pending struct {
		row int
		up  *models.ProductionUpsert
	}
	var queue []pending
	run.report.TotalRows = run.header.DataRows(run.sheet.Rows, func(r spreadsheet.Row) {
		partNo := r.Text("partNo")
		if partNo == "" {
			run.report.Fail(r.Number, "partNo is required")
			return
		}
		qty, ok := r.LooseNumber("qty")
		if !ok {
			run.report.Fail(r.Number, fmt.Sprintf("invalid qty %q", r.Text("qty")))
			return
		}
		if qty < 0 {
			run.report.Fail(r.Number, fmt.Sprintf("qty must not be negative, got %v", qty))
			return
		}
		run.queue(r.Number)
		queue = append(queue, pending{row: r.Number, up: &models.ProductionUpsert{
			ProductionKey: models.ProductionKey{
				MonthKey:  month,
				Customer:  r.Text("customer"),
				CarType:   r.Text("carType"),
				Division:  r.Text("division"),
				ProductNo: r.Text("productNo"),
				PartNo:    partNo,
			},
			RequiredQty: decimal.NewFromFloat(qty),
			Mode:        mode,
			Remark:      r.Text("remark"),
			At:          run.now,
		}})
	})
	defer run.finish()

	if !opts.DryRun && len(queue) > 0 {
		unlock, err := s.lock(ctx, op, "productions")
		if err != nil {
			return nil, s.fail(op, "productions", err, nil)
		}
		defer unlock()

		for start := 0; start < len(queue); start += s.Defaults.BatchSize {
			batch := queue[start:min(start+s.Defaults.BatchSize, len(queue))]
			ups := make([]*models.ProductionUpsert, len(batch))
			for i, p := range batch {
				ups[i] = p.up
			}
			ids, err := s.Store.Productions().UpsertMany(ctx, ups)
			if err == nil {
				for i, p := range batch {
					run.report.Upserted(p.row, ids[i])
				}
				run.log.WithFields(logrus.Fields{"from": start, "size": len(batch)}).Debug("[Ingest] production batch written")
				continue
			}

			// A failed batch is written nothing; retry it row by row to keep the good rows.
			run.log.WithFields(logrus.Fields{"from": start, "size": len(batch), "error": err}).
				Warn("[Ingest] production batch failed, writing rows one by one")
			for _, p := range batch {
				id, err := s.Store.Productions().Upsert(ctx, p.up)
				if err != nil {
					run.log.WithFields(logrus.Fields{"row": p.row, "error": err}).Warn("[Ingest] production row not written")
					run.report.Fail(p.row, err.Error())
					continue
				}
				run.report.Upserted(p.row, id)
			}
		}
		s.archive(ctx, "productions", run.day, filename, data)
	}

	items, err := s.Store.Productions().ListByMonth(ctx, month)
	if err != nil {
		return nil, s.fail(op, "productions", fmt.Errorf("failed to load month %s: %w", month, err), nil)
	}
	run.report.Summary = summarize(items)
	return run.report, nil
}
