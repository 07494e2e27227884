package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries holds the SQL statements of the catalog schema
type Queries struct {
	db DBTX
}

// New creates a Queries running on db
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries running inside tx
func (*Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertModule = `
INSERT INTO module (id, name, description, difficulty, url, image)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    difficulty = EXCLUDED.difficulty,
    url = EXCLUDED.url,
    image = EXCLUDED.image,
    updated_at = now()
WHERE (module.name, module.description, module.difficulty, module.url, module.image)
    IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.description, EXCLUDED.difficulty, EXCLUDED.url, EXCLUDED.image)`

// UpsertModule inserts a module or updates it when any column differs
func (q *Queries) UpsertModule(ctx context.Context, m catalog.Module) error {
	_, err := q.db.Exec(ctx, upsertModule,
		m.ID, m.Name, m.Description, string(m.Difficulty), m.URL, m.Image)
	return err
}

const upsertMachine = `
INSERT INTO machine (id, name, synopsis, difficulty, os, url, image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    synopsis = EXCLUDED.synopsis,
    difficulty = EXCLUDED.difficulty,
    os = EXCLUDED.os,
    url = EXCLUDED.url,
    image = EXCLUDED.image,
    updated_at = now()
WHERE (machine.name, machine.synopsis, machine.difficulty, machine.os, machine.url, machine.image)
    IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.synopsis, EXCLUDED.difficulty, EXCLUDED.os, EXCLUDED.url, EXCLUDED.image)`

// UpsertMachine inserts a machine or updates it when any column differs
func (q *Queries) UpsertMachine(ctx context.Context, m catalog.Machine) error {
	_, err := q.db.Exec(ctx, upsertMachine,
		m.ID, m.Name, m.Synopsis, string(m.Difficulty), string(m.OS), m.URL, m.Image)
	return err
}

const upsertExam = `
INSERT INTO exam (id, name, logo)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    logo = EXCLUDED.logo,
    updated_at = now()
WHERE (exam.name, exam.logo) IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.logo)`

// UpsertExam inserts an exam or updates it when any column differs
func (q *Queries) UpsertExam(ctx context.Context, e catalog.Exam) error {
	_, err := q.db.Exec(ctx, upsertExam, e.ID, e.Name, e.Logo)
	return err
}

const upsertVulnerability = `
INSERT INTO vulnerability (id, name)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    updated_at = now()
WHERE vulnerability.name IS DISTINCT FROM EXCLUDED.name`

// UpsertVulnerability inserts a vulnerability or renames it
func (q *Queries) UpsertVulnerability(ctx context.Context, v catalog.Vulnerability) error {
	_, err := q.db.Exec(ctx, upsertVulnerability, v.ID, v.Name)
	return err
}

const moduleExists = `SELECT EXISTS (SELECT 1 FROM module WHERE id = $1)`

// ModuleExists reports whether a module is stored
func (q *Queries) ModuleExists(ctx context.Context, id int) (bool, error) {
	return q.exists(ctx, moduleExists, id)
}

const deleteUnitsNotIn = `DELETE FROM unit WHERE module_id = $1 AND NOT (id = ANY($2::int[]))`

// DeleteUnitsNotIn removes the units of a module whose id is not listed
func (q *Queries) DeleteUnitsNotIn(ctx context.Context, moduleID int, keep []int32) error {
	_, err := q.db.Exec(ctx, deleteUnitsNotIn, moduleID, keep)
	return err
}

const upsertUnit = `
INSERT INTO unit (id, module_id, sequence, name, type)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    module_id = EXCLUDED.module_id,
    sequence = EXCLUDED.sequence,
    name = EXCLUDED.name,
    type = EXCLUDED.type,
    updated_at = now()
WHERE (unit.module_id, unit.sequence, unit.name, unit.type)
    IS DISTINCT FROM (EXCLUDED.module_id, EXCLUDED.sequence, EXCLUDED.name, EXCLUDED.type)`

// UpsertUnit inserts a unit or updates it when any column differs
func (q *Queries) UpsertUnit(ctx context.Context, u catalog.Unit) error {
	_, err := q.db.Exec(ctx, upsertUnit, u.ID, u.ModuleID, u.Sequence, u.Name, string(u.Type))
	return err
}

// linkTable describes the join table backing a link kind
type linkTable struct {
	table       string
	parentTable string
	parentCol   string
	childTable  string
	childCol    string
}

var linkTables = map[catalog.LinkKind]linkTable{
	catalog.LinkModuleVulnerability: {
		table: "module_vulnerability", parentTable: "module", parentCol: "module_id",
		childTable: "vulnerability", childCol: "vulnerability_id",
	},
	catalog.LinkMachineVulnerability: {
		table: "machine_vulnerability", parentTable: "machine", parentCol: "machine_id",
		childTable: "vulnerability", childCol: "vulnerability_id",
	},
	catalog.LinkExamModule: {
		table: "exam_module", parentTable: "exam", parentCol: "exam_id",
		childTable: "module", childCol: "module_id",
	},
	catalog.LinkModuleMachine: {
		table: "module_machine", parentTable: "module", parentCol: "module_id",
		childTable: "machine", childCol: "machine_id",
	},
}

// The statements below only interpolate identifiers from linkTables, never caller input.

// ParentExists reports whether the parent row of a link set is stored
func (q *Queries) ParentExists(ctx context.Context, lt linkTable, parentID int) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, lt.parentTable)
	err := q.db.QueryRow(ctx, query, parentID).Scan(&exists)
	return exists, err
}

// DeleteLinksNotIn removes the links of a parent whose child is not listed
func (q *Queries) DeleteLinksNotIn(ctx context.Context, lt linkTable, parentID int, keep []int32) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND NOT (%s = ANY($2::int[]))`,
		lt.table, lt.parentCol, lt.childCol)
	_, err := q.db.Exec(ctx, query, parentID, keep)
	return err
}

// InsertLinks links the parent to every listed child that is stored
func (q *Queries) InsertLinks(ctx context.Context, lt linkTable, parentID int, childIDs []int32) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s)
SELECT $1, c.id FROM %s c WHERE c.id = ANY($2::int[])
ON CONFLICT DO NOTHING`, lt.table, lt.parentCol, lt.childCol, lt.childTable)
	_, err := q.db.Exec(ctx, query, parentID, childIDs)
	return err
}

// CountLinks returns the number of links of a parent
func (q *Queries) CountLinks(ctx context.Context, lt linkTable, parentID int) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, lt.table, lt.parentCol)
	err := q.db.QueryRow(ctx, query, parentID).Scan(&n)
	return n, err
}

// ListLinks returns the sorted child ids of a parent
func (q *Queries) ListLinks(ctx context.Context, lt linkTable, parentID int) ([]int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY 1`, lt.childCol, lt.table, lt.parentCol)
	rows, err := q.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

const machineExists = `SELECT EXISTS (SELECT 1 FROM machine WHERE id = $1)`

// MachineExists reports whether a machine is stored
func (q *Queries) MachineExists(ctx context.Context, id int) (bool, error) {
	return q.exists(ctx, machineExists, id)
}

const deleteLabelsNotIn = `
DELETE FROM machine_label
WHERE machine_id = $1 AND kind = $2 AND NOT (label = ANY($3::text[]))`

// DeleteLabelsNotIn removes the labels of a machine that are not listed
func (q *Queries) DeleteLabelsNotIn(ctx context.Context, machineID int, kind catalog.LabelKind, keep []string) error {
	_, err := q.db.Exec(ctx, deleteLabelsNotIn, machineID, string(kind), keep)
	return err
}

const insertLabels = `
INSERT INTO machine_label (machine_id, kind, label)
SELECT $1, $2, l FROM unnest($3::text[]) AS l
ON CONFLICT DO NOTHING`

// InsertLabels adds the listed labels to a machine
func (q *Queries) InsertLabels(ctx context.Context, machineID int, kind catalog.LabelKind, labels []string) error {
	_, err := q.db.Exec(ctx, insertLabels, machineID, string(kind), labels)
	return err
}

const listLabels = `SELECT label FROM machine_label WHERE machine_id = $1 AND kind = $2 ORDER BY label`

// ListLabels returns the sorted labels of the given kind for a machine
func (q *Queries) ListLabels(ctx context.Context, machineID int, kind catalog.LabelKind) ([]string, error) {
	rows, err := q.db.Query(ctx, listLabels, machineID, string(kind))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// exists runs a single-row existence query for id
func (q *Queries) exists(ctx context.Context, query string, id int) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}
