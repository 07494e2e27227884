// Package postgres implements the storage gateway and run persistence on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/otel"
	"github.com/labcatalog/catalog-sync/internal/storage"
)

// Gateway writes the catalog to PostgreSQL
type Gateway struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ storage.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway on pool. The schema must already be migrated.
func NewGateway(pool *pgxpool.Pool, opts ...Option) *Gateway {
	g := &Gateway{pool: pool}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// UpsertModule creates or refreshes a module
func (g *Gateway) UpsertModule(ctx context.Context, m catalog.Module) error {
	ctx, span := g.startSpan(ctx, "Gateway.UpsertModule", otel.AttrEntityID.Int(m.ID))
	defer span.End()

	if err := New(g.pool).UpsertModule(ctx, m); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert module %d: %w", m.ID, err)
	}
	return nil
}

// UpsertMachine creates or refreshes a machine
func (g *Gateway) UpsertMachine(ctx context.Context, m catalog.Machine) error {
	ctx, span := g.startSpan(ctx, "Gateway.UpsertMachine", otel.AttrEntityID.Int(m.ID))
	defer span.End()

	if err := New(g.pool).UpsertMachine(ctx, m); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert machine %d: %w", m.ID, err)
	}
	return nil
}

// UpsertExam creates or refreshes an exam
func (g *Gateway) UpsertExam(ctx context.Context, e catalog.Exam) error {
	ctx, span := g.startSpan(ctx, "Gateway.UpsertExam", otel.AttrEntityID.Int(e.ID))
	defer span.End()

	if err := New(g.pool).UpsertExam(ctx, e); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert exam %d: %w", e.ID, err)
	}
	return nil
}

// UpsertVulnerability creates or refreshes a vulnerability
func (g *Gateway) UpsertVulnerability(ctx context.Context, v catalog.Vulnerability) error {
	ctx, span := g.startSpan(ctx, "Gateway.UpsertVulnerability", otel.AttrEntityID.Int(v.ID))
	defer span.End()

	if err := New(g.pool).UpsertVulnerability(ctx, v); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert vulnerability %d: %w", v.ID, err)
	}
	return nil
}

// ReplaceUnits makes units the complete unit set of the module in one transaction.
// The sequence constraint is checked at commit, so units may swap positions.
func (g *Gateway) ReplaceUnits(ctx context.Context, moduleID int, units []catalog.Unit) (err error) {
	ctx, span := g.startSpan(ctx, "Gateway.ReplaceUnits",
		otel.AttrEntityID.Int(moduleID), otel.AttrChildCount.Int(len(units)))
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	return g.inTx(ctx, func(q *Queries) error {
		ok, err := q.ModuleExists(ctx, moduleID)
		if err != nil {
			return fmt.Errorf("failed to look up module %d: %w", moduleID, err)
		}
		if !ok {
			return fmt.Errorf("module %d: %w", moduleID, storage.ErrParentNotFound)
		}

		keep := make([]int32, 0, len(units))
		for _, u := range units {
			keep = append(keep, int32(u.ID))
		}
		if err := q.DeleteUnitsNotIn(ctx, moduleID, keep); err != nil {
			return fmt.Errorf("failed to delete stale units of module %d: %w", moduleID, err)
		}
		for _, u := range units {
			u.ModuleID = moduleID
			if err := q.UpsertUnit(ctx, u); err != nil {
				return fmt.Errorf("failed to upsert unit %d of module %d: %w", u.ID, moduleID, err)
			}
		}
		return nil
	})
}

// ReplaceLinks makes childIDs the complete link set of the parent in one transaction.
// Children that are not stored are left out.
func (g *Gateway) ReplaceLinks(ctx context.Context, kind catalog.LinkKind, parentID int, childIDs []int) (int, error) {
	ctx, span := g.startSpan(ctx, "Gateway.ReplaceLinks",
		otel.AttrLinkKind.String(string(kind)), otel.AttrEntityID.Int(parentID), otel.AttrChildCount.Int(len(childIDs)))
	defer span.End()

	lt, ok := linkTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown link kind %q", kind)
	}

	var kept int
	err := g.inTx(ctx, func(q *Queries) error {
		exists, err := q.ParentExists(ctx, lt, parentID)
		if err != nil {
			return fmt.Errorf("failed to look up %s %d: %w", kind.Parent(), parentID, err)
		}
		if !exists {
			return fmt.Errorf("%s %d: %w", kind.Parent(), parentID, storage.ErrParentNotFound)
		}

		ids := toInt32(childIDs)
		if err := q.DeleteLinksNotIn(ctx, lt, parentID, ids); err != nil {
			return fmt.Errorf("failed to delete stale %s links: %w", kind, err)
		}
		if err := q.InsertLinks(ctx, lt, parentID, ids); err != nil {
			return fmt.Errorf("failed to insert %s links: %w", kind, err)
		}
		kept, err = q.CountLinks(ctx, lt, parentID)
		if err != nil {
			return fmt.Errorf("failed to count %s links: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		otel.RecordError(span, err)
		return 0, err
	}

	if missing := len(uniqueInts(childIDs)) - kept; missing > 0 {
		slog.DebugContext(ctx, "Skipped links to entities that are not stored",
			"kind", kind, "parent_id", parentID, "missing", missing)
	}
	return kept, nil
}

// ReplaceLabels makes labels the complete label set of the given kind for a machine
func (g *Gateway) ReplaceLabels(ctx context.Context, machineID int, kind catalog.LabelKind, labels []string) (err error) {
	ctx, span := g.startSpan(ctx, "Gateway.ReplaceLabels",
		otel.AttrLabelKind.String(string(kind)), otel.AttrEntityID.Int(machineID), otel.AttrChildCount.Int(len(labels)))
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	if labels == nil {
		labels = []string{}
	}
	return g.inTx(ctx, func(q *Queries) error {
		ok, err := q.MachineExists(ctx, machineID)
		if err != nil {
			return fmt.Errorf("failed to look up machine %d: %w", machineID, err)
		}
		if !ok {
			return fmt.Errorf("machine %d: %w", machineID, storage.ErrParentNotFound)
		}
		if err := q.DeleteLabelsNotIn(ctx, machineID, kind, labels); err != nil {
			return fmt.Errorf("failed to delete stale %s labels: %w", kind, err)
		}
		if err := q.InsertLabels(ctx, machineID, kind, labels); err != nil {
			return fmt.Errorf("failed to insert %s labels: %w", kind, err)
		}
		return nil
	})
}

// Links returns the sorted child ids linked to a parent
func (g *Gateway) Links(ctx context.Context, kind catalog.LinkKind, parentID int) ([]int, error) {
	lt, ok := linkTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown link kind %q", kind)
	}
	return New(g.pool).ListLinks(ctx, lt, parentID)
}

// Labels returns the sorted labels of the given kind for a machine
func (g *Gateway) Labels(ctx context.Context, machineID int, kind catalog.LabelKind) ([]string, error) {
	return New(g.pool).ListLabels(ctx, machineID, kind)
}

func (g *Gateway) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rollbackErr)
		}
	}()

	if err := fn(New(g.pool).WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func toInt32(ids []int) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		out = append(out, int32(id))
	}
	return out
}

func uniqueInts(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
