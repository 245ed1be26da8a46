package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"hostcompare/internal/app/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyRunning - миграция уже запущена (в этом процессе или по файлу статуса).
var ErrAlreadyRunning = errors.New("migration is already running")

// DefaultStaleAfter - сколько статус running может не обновляться, прежде чем
// считаться брошенным (процесс упал посреди миграции).
const DefaultStaleAfter = 15 * time.Minute

type Options struct {
	DryRun     bool
	SkipImages bool
}

type Deps struct {
	OpenSource func(ctx context.Context) (Source, error)
	Sink       Sink
	Images     ImageStore
	Fetcher    Fetcher
	Store      *StatusStore
}

type Runner struct {
	deps       Deps
	plan       []Stage
	batchSize  int
	staleAfter time.Duration
	now        func() time.Time

	// base отменяется в Stop и обрывает фоновые запуски
	base context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup

	statusMu sync.Mutex
	status   Status
}

func NewRunner(deps Deps, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = 500
	}
	if deps.Fetcher == nil {
		deps.Fetcher = NewHTTPFetcher()
	}
	base, stop := context.WithCancel(context.Background())
	return &Runner{
		deps:       deps,
		plan:       Plan,
		batchSize:  batchSize,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		base:       base,
		stop:       stop,
	}
}

// Status читает статус из файла: так видна и миграция, запущенная из CLI.
func (r *Runner) Status() (Status, error) {
	return r.deps.Store.Load()
}

// Start атомарно занимает миграцию и запускает её в фоне. Запуск живёт
// дольше ctx (обычно это контекст запроса) и отменяется только через Stop.
func (r *Runner) Start(ctx context.Context, opts Options) (Status, error) {
	st, err := r.acquire(opts)
	if err != nil {
		return Status{}, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	unwatch := context.AfterFunc(r.base, cancel)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		defer unwatch()
		if _, err := r.execute(runCtx, opts); err != nil {
			logrus.WithError(err).Error("migration failed")
		}
	}()
	return st, nil
}

// Run выполняет миграцию синхронно (для CLI).
func (r *Runner) Run(ctx context.Context, opts Options) (Status, error) {
	if _, err := r.acquire(opts); err != nil {
		return Status{}, err
	}
	return r.execute(ctx, opts)
}

// Wait ждёт завершения фоновой миграции.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Stop отменяет фоновую миграцию и ждёт, пока она сохранит статус failed.
// Новые запуски после Stop сразу завершаются с ошибкой.
func (r *Runner) Stop() {
	r.stop()
	r.wg.Wait()
}

// acquire под mu проверяет флаг процесса и файл статуса и сразу
// записывает running, так что второй Start получит ErrAlreadyRunning.
func (r *Runner) acquire(opts Options) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return Status{}, ErrAlreadyRunning
	}

	prev, err := r.deps.Store.Load()
	if err != nil {
		return Status{}, err
	}
	if prev.Running() {
		if !r.isStale(prev) {
			return Status{}, ErrAlreadyRunning
		}
		logrus.Warnf("previous migration status is stale (updated %v), starting over", prev.UpdatedAt)
	}

	now := r.now()
	st := Status{
		State:      StateRunning,
		DryRun:     opts.DryRun,
		SkipImages: opts.SkipImages,
		StartedAt:  &now,
		UpdatedAt:  &now,
		Tables:     []TableStatus{},
	}
	for _, name := range TableNames(r.plan) {
		st.Tables = append(st.Tables, TableStatus{Name: name})
	}
	if err := r.deps.Store.Save(st); err != nil {
		return Status{}, err
	}

	r.running = true
	r.statusMu.Lock()
	r.status = st
	r.statusMu.Unlock()
	return st, nil
}

func (r *Runner) isStale(st Status) bool {
	if st.UpdatedAt == nil {
		return true
	}
	return r.now().Sub(*st.UpdatedAt) > r.staleAfter
}

func (r *Runner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// update меняет статус под statusMu и сохраняет его в файл.
func (r *Runner) update(fn func(st *Status)) {
	r.statusMu.Lock()
	fn(&r.status)
	now := r.now()
	r.status.UpdatedAt = &now
	snapshot := r.status
	snapshot.Tables = append([]TableStatus(nil), r.status.Tables...)
	r.statusMu.Unlock()

	if err := r.deps.Store.Save(snapshot); err != nil {
		logrus.WithError(err).Warn("failed to save migration status")
	}
}

func (r *Runner) execute(ctx context.Context, opts Options) (st Status, err error) {
	defer r.release()
	defer func() {
		r.update(func(s *Status) {
			now := r.now()
			s.FinishedAt = &now
			s.CurrentTable = ""
			if err != nil {
				s.State = StateFailed
				s.Error = err.Error()
			} else {
				s.State = StateCompleted
			}
		})
		r.statusMu.Lock()
		st = r.status
		r.statusMu.Unlock()
	}()

	logrus.Infof("migration started (dry_run=%t, skip_images=%t, batch=%d)", opts.DryRun, opts.SkipImages, r.batchSize)

	src, err := r.deps.OpenSource(ctx)
	if err != nil {
		return st, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	for i, stage := range r.plan {
		if err := r.copyStage(ctx, src, stage, opts.DryRun); err != nil {
			return st, fmt.Errorf("stage %d: %w", i+1, err)
		}
	}

	if opts.DryRun {
		logrus.Info("dry run: nothing written")
		return st, nil
	}

	for _, stage := range r.plan {
		for _, t := range stage {
			if err := r.deps.Sink.ResetSequence(ctx, t); err != nil {
				return st, err
			}
		}
	}

	if !opts.SkipImages {
		if err := r.migrateImages(ctx); err != nil {
			return st, err
		}
	}

	logrus.Info("migration completed")
	return st, nil
}

func (r *Runner) copyStage(ctx context.Context, src Source, stage Stage, dryRun bool) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range stage {
		g.Go(func() error {
			return r.copyTable(gctx, src, t, dryRun)
		})
	}
	return g.Wait()
}

func (r *Runner) copyTable(ctx context.Context, src Source, t Table, dryRun bool) error {
	r.update(func(st *Status) { st.CurrentTable = t.Name })

	for offset := 0; ; {
		rows, err := src.ReadBatch(ctx, t, offset, r.batchSize)
		if errors.Is(err, ErrNoTable) {
			logrus.Warnf("table %s is missing in source, skipped", t.Name)
			return nil
		}
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			normalizeRow(t, row)
		}

		var written int64
		if !dryRun {
			written, err = r.deps.Sink.InsertBatch(ctx, t, rows)
			if err != nil {
				return err
			}
			metrics.ObserveMigrationRows(t.Name, int(written))
		}

		read := int64(len(rows))
		r.update(func(st *Status) {
			for i := range st.Tables {
				if st.Tables[i].Name == t.Name {
					st.Tables[i].Read += read
					st.Tables[i].Written += written
				}
			}
		})

		if len(rows) < r.batchSize {
			return nil
		}
		offset += len(rows)
	}
}

// normalizeRow приводит tinyint(1) из MySQL к bool.
func normalizeRow(t Table, row Row) {
	for i, col := range t.Columns {
		if i >= len(row) || !t.isBool(col) {
			continue
		}
		switch v := row[i].(type) {
		case int64:
			row[i] = v != 0
		case string:
			n, err := strconv.Atoi(v)
			row[i] = err == nil && n != 0
		}
	}
}

// migrateImages переносит абсолютные ссылки на картинки в MinIO.
// Ошибки по отдельным файлам считаются, но не прерывают миграцию.
func (r *Runner) migrateImages(ctx context.Context) error {
	if r.deps.Images == nil {
		logrus.Warn("object storage is not configured, images skipped")
		return nil
	}

	for _, col := range ImageColumns {
		refs, err := r.deps.Sink.LegacyImages(ctx, col)
		if err != nil {
			return err
		}

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.update(func(st *Status) { st.CurrentTable = col.Table + "." + col.Column })

			if err := r.migrateImage(ctx, col, ref); err != nil {
				logrus.WithError(err).Warnf("image %s #%d not migrated", col.Table, ref.ID)
				r.update(func(st *Status) { st.ImagesFailed++ })
				continue
			}
			r.update(func(st *Status) { st.ImagesCopied++ })
		}
	}
	return nil
}

func (r *Runner) migrateImage(ctx context.Context, col ImageColumn, ref ImageRef) error {
	data, name, err := r.deps.Fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return err
	}
	object, err := r.deps.Images.UploadFile(ctx, col.Kind, data, name)
	if err != nil {
		return err
	}
	return r.deps.Sink.SetImage(ctx, col, ref.ID, object)
}
