// Package record persists map-backed records in SQLite and drives the index
// lifecycle hooks around each write.
package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domrec "github.com/kailas-cloud/searchsync/internal/domain/record"
)

// CreatedAtField is stamped on create unless the caller sets it.
const CreatedAtField = "created_at"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Hooks receives the record lifecycle events.
type Hooks interface {
	AfterSave(ctx context.Context, rec domrec.Record, isNewRecord bool) error
	OnUpdate(ctx context.Context, rec domrec.Record) error
	OnDestroy(ctx context.Context, rec domrec.Record) error
}

// Repo stores rows of registered record types, one table per type.
type Repo struct {
	db     *sql.DB
	hooks  Hooks
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	tables map[string]string
}

// New creates a record repository.
func New(db *sql.DB, hooks Hooks, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{
		db:     db,
		hooks:  hooks,
		logger: logger,
		now:    time.Now,
		tables: make(map[string]string),
	}
}

// RegisterTable binds typeName to table and creates the table when missing.
func (r *Repo) RegisterTable(ctx context.Context, typeName, table string) error {
	if !tableNameRe.MatchString(table) {
		return fmt.Errorf("table %q: %w", table, domain.ErrInvalidConfig)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attrs TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`, table)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	r.mu.Lock()
	r.tables[typeName] = table
	r.mu.Unlock()
	return nil
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Create inserts a row and indexes it. A failing index hook rolls the insert back.
func (r *Repo) Create(ctx context.Context, typeName string, attrs map[string]any) (*domrec.Row, error) {
	table, err := r.table(typeName)
	if err != nil {
		return nil, err
	}

	attrs, err = canonical(attrs)
	if err != nil {
		return nil, err
	}
	delete(attrs, domrec.IDField)

	row := domrec.NewRow(typeName, attrs)
	if _, ok := attrs[CreatedAtField]; !ok {
		row.Set(CreatedAtField, r.now().Unix())
	}
	data, err := encodeAttrs(row.Pending())
	if err != nil {
		return nil, err
	}

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (attrs, updated_at) VALUES (?, ?)", table),
			data, r.now().Unix())
		if err != nil {
			return fmt.Errorf("insert %s: %w", typeName, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert id %s: %w", typeName, err)
		}

		row.MarkSaved(strconv.FormatInt(id, 10), true)
		if err := r.hooks.AfterSave(ctx, row, true); err != nil {
			return fmt.Errorf("index %s/%d: %w", typeName, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Update merges attrs into the stored row and reindexes it. The row is read,
// written and reindexed in one transaction; a failing index hook rolls the
// update back.
func (r *Repo) Update(
	ctx context.Context, typeName, id string, attrs map[string]any,
) (*domrec.Row, error) {
	table, err := r.table(typeName)
	if err != nil {
		return nil, err
	}

	attrs, err = canonical(attrs)
	if err != nil {
		return nil, err
	}

	var row *domrec.Row
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		row, err = r.find(ctx, tx, typeName, table, id)
		if err != nil {
			return err
		}
		for k, v := range attrs {
			if k == domrec.IDField {
				continue
			}
			row.Set(k, v)
		}
		row.MarkSaved(id, false)

		data, err := encodeAttrs(row.Values())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET attrs = ?, updated_at = ? WHERE id = ?", table),
			data, r.now().Unix(), id); err != nil {
			return fmt.Errorf("update %s/%s: %w", typeName, id, err)
		}
		if err := r.hooks.OnUpdate(ctx, row); err != nil {
			return fmt.Errorf("reindex %s/%s: %w", typeName, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Destroy removes the row from the index, then deletes it, in one
// transaction. The row is kept when index removal fails.
func (r *Repo) Destroy(ctx context.Context, typeName, id string) error {
	table, err := r.table(typeName)
	if err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		row, err := r.find(ctx, tx, typeName, table, id)
		if err != nil {
			return err
		}
		if err := r.hooks.OnDestroy(ctx, row); err != nil {
			return fmt.Errorf("unindex %s/%s: %w", typeName, id, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id); err != nil {
			return fmt.Errorf("delete %s/%s: %w", typeName, id, err)
		}
		return nil
	})
}

// Find loads one row.
func (r *Repo) Find(ctx context.Context, typeName, id string) (*domrec.Row, error) {
	table, err := r.table(typeName)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, r.db, typeName, table, id)
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repo) find(ctx context.Context, q rowQuerier, typeName, table, id string) (*domrec.Row, error) {
	var data string
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT attrs FROM %s WHERE id = ?", table), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", typeName, id, domain.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("find %s/%s: %w", typeName, id, err)
	}

	attrs, err := decodeAttrs(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", typeName, id, err)
	}
	return domrec.LoadRow(typeName, id, attrs), nil
}

// FindInBatches walks every row in id order, batchSize rows at a time.
func (r *Repo) FindInBatches(
	ctx context.Context, typeName string, batchSize int, fn func([]domrec.Record) error,
) error {
	table, err := r.table(typeName)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch size %d: %w", batchSize, domain.ErrInvalidConfig)
	}

	q := fmt.Sprintf("SELECT id, attrs FROM %s WHERE id > ? ORDER BY id LIMIT ?", table)
	var lastID int64
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("find in batches %s: %w", typeName, err)
		}

		batch, last, err := r.query(ctx, typeName, q, lastID, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		lastID = last
	}
}

// Page returns up to limit rows starting at offset, in id order.
func (r *Repo) Page(ctx context.Context, typeName string, offset, limit int) ([]domrec.Record, error) {
	table, err := r.table(typeName)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT id, attrs FROM %s ORDER BY id LIMIT ? OFFSET ?", table)
	recs, _, err := r.query(ctx, typeName, q, limit, offset)
	return recs, err
}

// Count returns the number of rows stored for typeName.
func (r *Repo) Count(ctx context.Context, typeName string) (int, error) {
	table, err := r.table(typeName)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", typeName, err)
	}
	return n, nil
}

func (r *Repo) query(
	ctx context.Context, typeName, q string, args ...any,
) ([]domrec.Record, int64, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", typeName, err)
	}
	defer rows.Close()

	var (
		out    []domrec.Record
		lastID int64
	)
	for rows.Next() {
		var (
			id   int64
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", typeName, err)
		}
		attrs, err := decodeAttrs(data)
		if err != nil {
			return nil, 0, fmt.Errorf("decode %s/%d: %w", typeName, id, err)
		}
		out = append(out, domrec.LoadRow(typeName, strconv.FormatInt(id, 10), attrs))
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", typeName, err)
	}
	return out, lastID, nil
}

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repo) table(typeName string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[typeName]
	if !ok {
		return "", fmt.Errorf("%s: %w", typeName, domain.ErrTypeNotRegistered)
	}
	return t, nil
}
