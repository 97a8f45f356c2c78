package repos

import (
	"github.com/jmoiron/sqlx"
)

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Bind marks the sid as a logged-in operator session.
func (r *SessionRepo) Bind(sid string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id, operator, last_seen)
	  VALUES(?, 1, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET operator=1, last_seen=CURRENT_TIMESTAMP`, sid)
	return err
}

func (r *SessionRepo) IsOperator(sid string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM sessions WHERE id = ? AND operator = 1`, sid)
	return n > 0, err
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET operator=0, last_seen=CURRENT_TIMESTAMP WHERE id = ?`, sid)
	return err
}
