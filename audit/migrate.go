package audit

import (
	"github.com/openmoniker/openmoniker/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	path       TEXT NOT NULL,
	action     TEXT NOT NULL,
	actor      TEXT NOT NULL,
	old_value  TEXT,
	new_value  TEXT,
	details    TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_entries_path ON audit_entries(path, timestamp);
`

// migrate creates the audit schema when missing
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "migrate audit schema")
	}
	return nil
}
