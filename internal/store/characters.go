package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const tableCharacter = `"char"`

const selectCharacters = `
SELECT c.id, c.name, c.organization, o.name, c.affiliation, a.name, c.portrait, c.lastLogon, c.location, c.owner
FROM "char" c
LEFT JOIN organization o ON o.id = c.organization
LEFT JOIN affiliation a ON a.id = c.affiliation`

// WriteCharacter upserts a character. Its organization and affiliation, when
// set, are upserted first in the same transaction so the character row never
// references a missing catalog row. It returns the rows affected by the
// character write.
func (s *Store) WriteCharacter(ctx context.Context, c *Character) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if c == nil || c.ID <= 0 || strings.TrimSpace(c.Name) == "" {
		return 0, fmt.Errorf("%w: character needs an id and a name", ErrInvalidInput)
	}

	var affected int64
	err := s.withTx(ctx, "write character", func(tx *sql.Tx) error {
		var orgID, affID sql.NullInt64

		if c.Organization != nil {
			if _, err := upsertCatalog(ctx, tx, tableOrganization, catalogRow(*c.Organization)); err != nil {
				return err
			}
			orgID = sql.NullInt64{Int64: c.Organization.ID, Valid: true}
		}
		if c.Affiliation != nil {
			if _, err := upsertCatalog(ctx, tx, tableAffiliation, catalogRow(*c.Affiliation)); err != nil {
				return err
			}
			affID = sql.NullInt64{Int64: c.Affiliation.ID, Valid: true}
		}

		n, err := upsertCharacter(ctx, tx, c, orgID, affID)
		affected = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func upsertCharacter(ctx context.Context, q querier, c *Character, orgID, affID sql.NullInt64) (int64, error) {
	found, err := rowExists(ctx, q, tableCharacter, c.ID)
	if err != nil {
		return 0, err
	}

	portrait := sql.NullString{String: c.Portrait, Valid: c.Portrait != ""}
	lastLogon := c.LastLogin.UTC().Format(time.RFC3339Nano)

	var res sql.Result
	if found {
		res, err = q.ExecContext(ctx,
			`UPDATE "char" SET name = ?, organization = ?, affiliation = ?, portrait = ?, lastLogon = ?, location = ?, owner = ? WHERE id = ?`,
			c.Name, orgID, affID, portrait, lastLogon, c.Location, c.Owner, c.ID)
	} else {
		res, err = q.ExecContext(ctx,
			`INSERT INTO "char" (id, name, organization, affiliation, portrait, lastLogon, location, owner) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, orgID, affID, portrait, lastLogon, c.Location, c.Owner)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReadCharacters returns the characters with the given ids, or every cached
// character for an empty list, with organization and affiliation resolved.
func (s *Store) ReadCharacters(ctx context.Context, ids []int64) ([]Character, error) {
	const op = "read characters"
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := selectCharacters
	if len(ids) > 0 {
		query += " WHERE c.id IN (" + placeholders(len(ids)) + ")"
	}
	query += " ORDER BY c.id"

	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []Character
	for rows.Next() {
		var (
			c                  Character
			orgID, affID       sql.NullInt64
			orgName, affName   sql.NullString
			portrait, lastSeen sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &orgID, &orgName, &affID, &affName, &portrait, &lastSeen, &c.Location, &c.Owner); err != nil {
			return nil, wrap(op, err)
		}

		if orgID.Valid {
			c.Organization = &Organization{ID: orgID.Int64, Name: orgName.String}
		}
		if affID.Valid {
			c.Affiliation = &Affiliation{ID: affID.Int64, Name: affName.String}
		}
		c.Portrait = portrait.String
		if t, err := time.Parse(time.RFC3339Nano, lastSeen.String); err == nil {
			c.LastLogin = t
		}

		result = append(result, c)
	}
	return result, wrap(op, rows.Err())
}

// RemoveCharacters deletes characters by id. An empty id list deletes nothing.
func (s *Store) RemoveCharacters(ctx context.Context, ids []int64) (int64, error) {
	return s.deleteByIDs(ctx, "remove characters", tableCharacter, ids)
}
