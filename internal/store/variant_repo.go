package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// variantRepo implements VariantRepo with SQL built by ent's dialect builder.
type variantRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *variantRepo) SaveBatch(ctx context.Context, b *BatchRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Sequence = seqNum

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args := builder().Insert("variant_batches").
		Columns("id", "sequence", "template_id", "topic_id", "title", "base_seed", "shuffled", "variants_count", "created_at").
		Values(b.ID, b.Sequence, b.TemplateID, b.TopicID, b.Title, b.BaseSeed, b.Shuffled, len(b.Variants), b.CreatedAt.UnixMilli()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, v := range b.Variants {
		query, args := builder().Insert("variants").
			Columns("batch_id", "variant_index", "seed").
			Values(b.ID, v.Index, v.Seed).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert variant %d: %w", v.Index, err)
		}
		if len(v.Items) == 0 {
			continue
		}
		ins := builder().Insert("variant_items").
			Columns("batch_id", "variant_index", "order_index", "slot_index", "task_id", "section_label")
		for _, it := range v.Items {
			ins = ins.Values(b.ID, v.Index, it.OrderIndex, it.SlotIndex, it.TaskID, it.SectionLabel)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert items for variant %d: %w", v.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

var batchColumns = []string{"id", "sequence", "template_id", "topic_id", "title", "base_seed", "shuffled", "created_at"}

func (r *variantRepo) GetBatch(ctx context.Context, id string) (*BatchRecord, error) {
	return r.getBatch(ctx, entsql.EQ("id", id))
}

func (r *variantRepo) GetBatchBySequence(ctx context.Context, seq int64) (*BatchRecord, error) {
	return r.getBatch(ctx, entsql.EQ("sequence", seq))
}

func (r *variantRepo) getBatch(ctx context.Context, where *entsql.Predicate) (*BatchRecord, error) {
	query, args := builder().Select(batchColumns...).
		From(entsql.Table("variant_batches")).
		Where(where).
		Query()

	var (
		b       BatchRecord
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.Sequence, &b.TemplateID, &b.TopicID, &b.Title, &b.BaseSeed, &b.Shuffled, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query batch: %w", err)
	}
	b.CreatedAt = time.UnixMilli(created).UTC()

	if err := r.loadVariants(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *variantRepo) loadVariants(ctx context.Context, b *BatchRecord) error {
	query, args := builder().Select("variant_index", "seed").
		From(entsql.Table("variants")).
		Where(entsql.EQ("batch_id", b.ID)).
		OrderBy("variant_index").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query variants: %w", err)
	}
	byIndex := make(map[int]int)
	for rows.Next() {
		var v VariantRecord
		if err := rows.Scan(&v.Index, &v.Seed); err != nil {
			rows.Close()
			return fmt.Errorf("scan variant: %w", err)
		}
		byIndex[v.Index] = len(b.Variants)
		b.Variants = append(b.Variants, v)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close variant rows: %w", err)
	}

	query, args = builder().Select("variant_index", "order_index", "slot_index", "task_id", "section_label").
		From(entsql.Table("variant_items")).
		Where(entsql.EQ("batch_id", b.ID)).
		OrderBy("variant_index", "order_index").
		Query()
	rows, err = r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query variant items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			idx int
			it  ItemRecord
		)
		if err := rows.Scan(&idx, &it.OrderIndex, &it.SlotIndex, &it.TaskID, &it.SectionLabel); err != nil {
			return fmt.Errorf("scan variant item: %w", err)
		}
		pos, ok := byIndex[idx]
		if !ok {
			return fmt.Errorf("item references missing variant %d", idx)
		}
		b.Variants[pos].Items = append(b.Variants[pos].Items, it)
	}
	return rows.Err()
}

func (r *variantRepo) ListBatches(ctx context.Context, opts QueryOpts) ([]BatchSummary, error) {
	sel := builder().Select("id", "sequence", "template_id", "title", "base_seed", "variants_count", "created_at").
		From(entsql.Table("variant_batches")).
		OrderBy(entsql.Desc("sequence"))
	if opts.TemplateID != "" {
		sel = sel.Where(entsql.EQ("template_id", opts.TemplateID))
	}
	if !opts.From.IsZero() {
		sel = sel.Where(entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel = sel.Where(entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []BatchSummary
	for rows.Next() {
		var (
			s       BatchSummary
			created int64
		)
		if err := rows.Scan(&s.ID, &s.Sequence, &s.TemplateID, &s.Title, &s.BaseSeed, &s.VariantsCount, &created); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		s.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *variantRepo) DeleteBatch(ctx context.Context, id string) error {
	query, args := builder().Delete("variant_batches").
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
