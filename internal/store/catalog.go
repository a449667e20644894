package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const (
	tableOrganization = "organization"
	tableAffiliation  = "affiliation"
)

type catalogRow struct {
	ID   int64
	Name string
}

// upsertCatalog inserts or updates an id/name row; presence of the id decides which.
func upsertCatalog(ctx context.Context, q querier, table string, row catalogRow) (int64, error) {
	if row.ID <= 0 || strings.TrimSpace(row.Name) == "" {
		return 0, fmt.Errorf("%w: %s row needs an id and a name", ErrInvalidInput, table)
	}

	found, err := rowExists(ctx, q, table, row.ID)
	if err != nil {
		return 0, err
	}

	var query string
	var args []any
	if found {
		query = "UPDATE " + table + " SET name = ? WHERE id = ?"
		args = []any{row.Name, row.ID}
	} else {
		query = "INSERT INTO " + table + " (id, name) VALUES (?, ?)"
		args = []any{row.ID, row.Name}
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) selectCatalog(ctx context.Context, op, table string, ids []int64) ([]catalogRow, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := "SELECT id, name FROM " + table
	if len(ids) > 0 {
		query += " WHERE id IN (" + placeholders(len(ids)) + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []catalogRow
	for rows.Next() {
		var row catalogRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, row)
	}
	return result, wrap(op, rows.Err())
}

func (s *Store) writeCatalog(ctx context.Context, op, table string, row catalogRow) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var n int64
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		var err error
		n, err = upsertCatalog(ctx, tx, table, row)
		return err
	})
	return n, err
}

// WriteOrganization upserts an organization.
func (s *Store) WriteOrganization(ctx context.Context, org Organization) (int64, error) {
	return s.writeCatalog(ctx, "write organization", tableOrganization, catalogRow(org))
}

// ReadOrganizations returns the organizations with the given ids, or all of them for an empty list.
func (s *Store) ReadOrganizations(ctx context.Context, ids []int64) ([]Organization, error) {
	rows, err := s.selectCatalog(ctx, "read organizations", tableOrganization, ids)
	if err != nil {
		return nil, err
	}
	orgs := make([]Organization, len(rows))
	for i, row := range rows {
		orgs[i] = Organization(row)
	}
	return orgs, nil
}

// RemoveOrganizations deletes organizations by id; their characters go with them.
// An empty id list deletes nothing.
func (s *Store) RemoveOrganizations(ctx context.Context, ids []int64) (int64, error) {
	return s.deleteByIDs(ctx, "remove organizations", tableOrganization, ids)
}

// WriteAffiliation upserts an affiliation.
func (s *Store) WriteAffiliation(ctx context.Context, aff Affiliation) (int64, error) {
	return s.writeCatalog(ctx, "write affiliation", tableAffiliation, catalogRow(aff))
}

// ReadAffiliations returns the affiliations with the given ids, or all of them for an empty list.
func (s *Store) ReadAffiliations(ctx context.Context, ids []int64) ([]Affiliation, error) {
	rows, err := s.selectCatalog(ctx, "read affiliations", tableAffiliation, ids)
	if err != nil {
		return nil, err
	}
	affs := make([]Affiliation, len(rows))
	for i, row := range rows {
		affs[i] = Affiliation(row)
	}
	return affs, nil
}

// RemoveAffiliations deletes affiliations by id; their characters go with them.
// An empty id list deletes nothing.
func (s *Store) RemoveAffiliations(ctx context.Context, ids []int64) (int64, error) {
	return s.deleteByIDs(ctx, "remove affiliations", tableAffiliation, ids)
}
