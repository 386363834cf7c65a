package store

import (
	"context"
	"database/sql"

	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/queryir"
	"github.com/roach88/armory/internal/querysql"
	"github.com/roach88/armory/internal/record"
)

// Adapter is the generic record-store contract.
//
// Every call names its collection by record.Kind and filters by
// field-equality criteria. Fields are checked against the Kind before any
// SQL is compiled; unknown fields fail with errors.ErrMalformed.
type Adapter interface {
	// Create inserts rec and returns its id. When a schema conflict clause
	// ignores the insert, Create returns 0 and no error.
	Create(ctx context.Context, kind record.Kind, rec record.Record) (int64, error)

	// Get returns the records matching every criterion, ordered by id.
	Get(ctx context.Context, kind record.Kind, criteria record.Criteria) ([]record.Record, error)

	// GetIn returns the records whose field is one of values, ordered by id.
	GetIn(ctx context.Context, kind record.Kind, field string, values []any) ([]record.Record, error)

	// Update sets the fields of rec on every record where keyField equals keyValue.
	Update(ctx context.Context, kind record.Kind, keyField string, keyValue any, rec record.Record) error

	// Delete removes the records matching every criterion.
	Delete(ctx context.Context, kind record.Kind, criteria record.Criteria) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queries implements Adapter over a querier.
type queries struct {
	q        querier
	compiler *querysql.SQLCompiler
}

var _ Adapter = queries{}

func newQueries(q querier) queries {
	return queries{q: q, compiler: querysql.NewSQLCompiler()}
}

func (a queries) Create(ctx context.Context, kind record.Kind, rec record.Record) (int64, error) {
	if err := kind.CheckFields(rec.Fields()...); err != nil {
		return 0, err
	}

	res, err := a.exec(ctx, queryir.Insert{Into: kind.Table(), Values: rec})
	if err != nil {
		return 0, errors.WrapStore(err, "create "+kind.String())
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WrapStore(err, "create "+kind.String())
	}
	if n == 0 {
		return 0, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WrapStore(err, "create "+kind.String())
	}
	return id, nil
}

func (a queries) Get(ctx context.Context, kind record.Kind, criteria record.Criteria) ([]record.Record, error) {
	if err := kind.CheckFields(criteria.Fields()...); err != nil {
		return nil, err
	}

	stmt := queryir.Select{From: kind.Table(), Filter: queryir.Match(criteria)}
	recs, err := a.query(ctx, stmt)
	if err != nil {
		return nil, errors.WrapStore(err, "get "+kind.String())
	}
	return recs, nil
}

func (a queries) GetIn(ctx context.Context, kind record.Kind, field string, values []any) ([]record.Record, error) {
	if err := kind.CheckFields(field); err != nil {
		return nil, err
	}

	stmt := queryir.Select{From: kind.Table(), Filter: queryir.In{Field: field, Values: values}}
	recs, err := a.query(ctx, stmt)
	if err != nil {
		return nil, errors.WrapStore(err, "get "+kind.String())
	}
	return recs, nil
}

func (a queries) Update(ctx context.Context, kind record.Kind, keyField string, keyValue any, rec record.Record) error {
	if err := kind.CheckFields(append(rec.Fields(), keyField)...); err != nil {
		return err
	}

	stmt := queryir.Update{
		Table:  kind.Table(),
		Set:    rec,
		Filter: queryir.Equals{Field: keyField, Value: keyValue},
	}
	if _, err := a.exec(ctx, stmt); err != nil {
		return errors.WrapStore(err, "update "+kind.String())
	}
	return nil
}

func (a queries) Delete(ctx context.Context, kind record.Kind, criteria record.Criteria) error {
	if err := kind.CheckFields(criteria.Fields()...); err != nil {
		return err
	}

	stmt := queryir.Delete{From: kind.Table(), Filter: queryir.Match(criteria)}
	if _, err := a.exec(ctx, stmt); err != nil {
		return errors.WrapStore(err, "delete "+kind.String())
	}
	return nil
}

func (a queries) compile(stmt queryir.Statement) (string, []any, error) {
	sqlText, params, err := a.compiler.Compile(stmt)
	if err != nil {
		return "", nil, errors.WrapMalformed(err, "compile statement")
	}
	return sqlText, params, nil
}

func (a queries) exec(ctx context.Context, stmt queryir.Statement) (sql.Result, error) {
	sqlText, params, err := a.compile(stmt)
	if err != nil {
		return nil, err
	}
	return a.q.ExecContext(ctx, sqlText, params...)
}

func (a queries) query(ctx context.Context, stmt queryir.Statement) ([]record.Record, error) {
	sqlText, params, err := a.compile(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := a.q.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords reads every row into a Record keyed by column name.
// TEXT that the driver hands back as []byte is converted to string.
func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read columns")
	}

	out := []record.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}

		rec := make(record.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}
	return out, nil
}
