package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"record-collection/core/collection"
	"record-collection/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Database is a collection.Transport storing records as rows of one table.
//
// A request target addresses the whole table unless the path segment after the
// table name holds an identity: with table "records", "/records" reads every
// row and "/records/7" reads the row whose identity is 7.
type Database struct {
	db          *gorm.DB
	table       string
	idAttribute string
	columns     map[string]struct{}
	logger      *zap.Logger
}

// NewDatabase inspects table and creates a transport for it. The table must
// exist and have a column for idAttribute.
func NewDatabase(db *gorm.DB, table, idAttribute string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idAttribute == "" {
		idAttribute = "id"
	}

	columns, err := database.GetTableColumns(db, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist or has no columns", table)
	}
	set := database.ColumnSet(columns)
	if _, ok := set[strings.ToLower(idAttribute)]; !ok {
		return nil, fmt.Errorf("table %s has no identity column %q", table, idAttribute)
	}

	return &Database{
		db:          db,
		table:       table,
		idAttribute: idAttribute,
		columns:     set,
		logger:      logger,
	}, nil
}

// Do performs req against the table.
func (d *Database) Do(ctx context.Context, req collection.Request) (collection.Response, error) {
	var (
		rows []map[string]any
		err  error
	)
	switch req.Method {
	case collection.MethodRead:
		rows, err = d.read(d.db.WithContext(ctx), d.targetID(req.Target))
	case collection.MethodCreate:
		rows, err = d.create(ctx, req.Payload)
	case collection.MethodUpdate:
		rows, err = d.update(ctx, req.Payload)
	default:
		err = fmt.Errorf("unsupported method %q", req.Method)
	}
	if err != nil {
		return collection.Response{}, err
	}

	records := make([]collection.Attributes, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	d.logger.Debug("Database transport completed",
		zap.String("method", string(req.Method)),
		zap.String("table", d.table),
		zap.Int("rows", len(records)),
	)
	return collection.Response{Records: records}, nil
}

func (d *Database) targetID(target string) string {
	segments := strings.Split(strings.Trim(target, "/"), "/")
	for i, seg := range segments {
		if seg == d.table && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}

func (d *Database) idColumn() clause.Column {
	return clause.Column{Name: d.idAttribute}
}

func (d *Database) read(tx *gorm.DB, id string) ([]map[string]any, error) {
	q := tx.Table(d.table)
	if id != "" {
		q = q.Where(clause.Eq{Column: d.idColumn(), Value: id})
	}

	var rows []map[string]any
	if err := q.Order(clause.OrderByColumn{Column: d.idColumn()}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", d.table, err)
	}
	return rows, nil
}

func (d *Database) create(ctx context.Context, payload []collection.Attributes) ([]map[string]any, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("create requires a payload")
	}
	row := d.toRow(payload[0])

	var rows []map[string]any
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, hasID := row[d.idAttribute]
		if err := tx.Table(d.table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert into %s: %w", d.table, err)
		}

		q := tx.Table(d.table)
		if hasID && id != nil {
			q = q.Where(clause.Eq{Column: d.idColumn(), Value: id})
		} else {
			q = q.Order(clause.OrderByColumn{Column: d.idColumn(), Desc: true}).Limit(1)
		}
		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to read back %s: %w", d.table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// update makes the table hold exactly payload: rows missing from it are
// deleted, known identities are updated and the rest inserted.
func (d *Database) update(ctx context.Context, payload []collection.Attributes) ([]map[string]any, error) {
	rows := make([]map[string]any, len(payload))
	var ids []any
	for i, attrs := range payload {
		rows[i] = d.toRow(attrs)
		if id, ok := rows[i][d.idAttribute]; ok && id != nil {
			ids = append(ids, id)
		}
	}

	var out []map[string]any
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Exec("DELETE FROM ?", clause.Table{Name: d.table})
		if len(ids) > 0 {
			del = tx.Exec("DELETE FROM ? WHERE ? NOT IN ?", clause.Table{Name: d.table}, d.idColumn(), ids)
		}
		if del.Error != nil {
			return fmt.Errorf("failed to prune %s: %w", d.table, del.Error)
		}

		for _, row := range rows {
			if err := d.upsert(tx, row); err != nil {
				return err
			}
		}

		var err error
		out, err = d.read(tx, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Database) upsert(tx *gorm.DB, row map[string]any) error {
	id, ok := row[d.idAttribute]
	if !ok || id == nil {
		if err := tx.Table(d.table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert into %s: %w", d.table, err)
		}
		return nil
	}

	var count int64
	where := clause.Eq{Column: d.idColumn(), Value: id}
	if err := tx.Table(d.table).Where(where).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s %v: %w", d.table, id, err)
	}
	if count == 0 {
		if err := tx.Table(d.table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert into %s: %w", d.table, err)
		}
		return nil
	}

	changes := make(map[string]any, len(row))
	for k, v := range row {
		if k != d.idAttribute {
			changes[k] = v
		}
	}
	if len(changes) == 0 {
		return nil
	}
	if err := tx.Table(d.table).Where(where).Updates(changes).Error; err != nil {
		return fmt.Errorf("failed to update %s %v: %w", d.table, id, err)
	}
	return nil
}

// toRow keeps the attributes that have a column. Nested values are stored as JSON.
func (d *Database) toRow(attrs collection.Attributes) map[string]any {
	row := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if _, ok := d.columns[strings.ToLower(k)]; !ok {
			continue
		}
		row[k] = columnValue(v)
	}
	return row
}

func columnValue(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if _, isBytes := v.([]byte); isBytes {
			return v
		}
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return v
}

func fromRow(row map[string]any) collection.Attributes {
	attrs := make(collection.Attributes, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		attrs[k] = v
	}
	return attrs
}
