package store

import (
	"context"
	"database/sql"
	"time"
)

// Metadata ids holding the session.
const (
	metaToken        = "token"
	metaRefreshToken = "refresh_token"
	metaExpiration   = "expiration"
)

// ReadSession loads the session record. Missing fields come back empty.
func (s *Store) ReadSession(ctx context.Context) (Session, error) {
	const op = "read session"
	if err := s.ready(); err != nil {
		return Session{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, value FROM metadata WHERE id IN (?, ?, ?)`,
		metaToken, metaRefreshToken, metaExpiration)
	if err != nil {
		return Session{}, wrap(op, err)
	}
	defer rows.Close()

	var session Session
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return Session{}, wrap(op, err)
		}
		switch id {
		case metaToken:
			session.AccessToken = value
		case metaRefreshToken:
			session.RefreshToken = value
		case metaExpiration:
			if value == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				session.ExpiresAt = t
			}
		}
	}
	return session, wrap(op, rows.Err())
}

// WriteSession overwrites the session record.
func (s *Store) WriteSession(ctx context.Context, session Session) error {
	if err := s.ready(); err != nil {
		return err
	}

	expiration := ""
	if !session.ExpiresAt.IsZero() {
		expiration = session.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}

	values := [][2]string{
		{metaToken, session.AccessToken},
		{metaRefreshToken, session.RefreshToken},
		{metaExpiration, expiration},
	}

	return s.withTx(ctx, "write session", func(tx *sql.Tx) error {
		for _, kv := range values {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO metadata (id, value) VALUES (?, ?)
				ON CONFLICT(id) DO UPDATE SET value = excluded.value
			`, kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearSession removes the session record, used on logout.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM metadata WHERE id IN (?, ?, ?)`,
		metaToken, metaRefreshToken, metaExpiration)
	return wrap("clear session", err)
}
