package repos

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"sodastock/internal/domain"
)

type SodaRepo struct{ db *sqlx.DB }

func NewSodaRepo(db *sqlx.DB) *SodaRepo { return &SodaRepo{db: db} }

// ListOptions narrows and orders a collection read. Zero value means
// "every row in insertion order".
type ListOptions struct {
	NameLike string
	OrderBy  string
}

// orderCols whitelists ORDER BY targets; anything else is a caller bug.
var orderCols = map[string]string{
	"":         "id",
	"id":       "id",
	"name":     "LOWER(name)",
	"quantity": "quantity",
	"price":    "price",
	"sold":     "sold",
	"got":      "got",
}

func (r *SodaRepo) List(opts ListOptions) ([]domain.Soda, error) {
	col, ok := orderCols[opts.OrderBy]
	if !ok {
		return nil, fmt.Errorf("unknown order column %q", opts.OrderBy)
	}

	where := `1=1`
	args := []any{}
	if opts.NameLike != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+opts.NameLike+"%")
	}

	var out []domain.Soda
	err := r.db.Select(&out, `
	  SELECT id, name, quantity, price, sold, got
	  FROM sodas
	  WHERE `+where+`
	  ORDER BY `+col, args...)
	return out, err
}

// Get returns sql.ErrNoRows for a missing id; callers treat that as
// absent, not as a failure.
func (r *SodaRepo) Get(id int64) (domain.Soda, error) {
	var s domain.Soda
	err := r.db.Get(&s, `
	  SELECT id, name, quantity, price, sold, got
	  FROM sodas WHERE id = ?`, id)
	return s, err
}

func (r *SodaRepo) Insert(p domain.SodaPatch) (int64, error) {
	cols := []string{}
	marks := []string{}
	args := []any{}
	add := func(col string, v any) {
		cols = append(cols, col)
		marks = append(marks, "?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Quantity != nil {
		add("quantity", *p.Quantity)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Sold != nil {
		add("sold", *p.Sold)
	}
	if p.Got != nil {
		add("got", *p.Got)
	}

	q := fmt.Sprintf(`INSERT INTO sodas(%s) VALUES(%s)`,
		strings.Join(cols, ", "), strings.Join(marks, ", "))
	res, err := r.db.Exec(q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SodaRepo) Update(id int64, p domain.SodaPatch) (int64, error) {
	sets, args := patchSets(p)
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id)
	res, err := r.db.Exec(`UPDATE sodas SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateWhere applies the patch to every row matching the optional name
// filter (unscoped when blank).
func (r *SodaRepo) UpdateWhere(nameLike string, p domain.SodaPatch) (int64, error) {
	sets, args := patchSets(p)
	if len(sets) == 0 {
		return 0, nil
	}

	q := `UPDATE sodas SET ` + strings.Join(sets, ", ")
	if nameLike != "" {
		q += ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+nameLike+"%")
	}
	res, err := r.db.Exec(q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SodaRepo) Delete(id int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM sodas WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAll removes every row matching the optional name filter
// (unscoped when blank).
func (r *SodaRepo) DeleteAll(nameLike string) (int64, error) {
	q := `DELETE FROM sodas`
	args := []any{}
	if nameLike != "" {
		q += ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+nameLike+"%")
	}
	res, err := r.db.Exec(q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Sell decrements the on-hand count and bumps the sold counter in one
// conditional statement, so concurrent sells cannot drive quantity
// negative or lose an update. Zero rows means out of stock or no such row.
func (r *SodaRepo) Sell(id int64) (int64, error) {
	res, err := r.db.Exec(`
	  UPDATE sodas
	  SET quantity = quantity - 1, sold = sold + 1
	  WHERE id = ? AND quantity > 0`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Receive increments the on-hand count and bumps the got counter. No
// zero-guard: restocking an empty item must work. A NULL quantity counts
// as 0 before the increment.
func (r *SodaRepo) Receive(id int64) (int64, error) {
	res, err := r.db.Exec(`
	  UPDATE sodas
	  SET quantity = COALESCE(quantity, 0) + 1, got = got + 1
	  WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SodaRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM sodas`)
	return n, err
}

// patchSets renders the present fields of a patch as SET clauses.
func patchSets(p domain.SodaPatch) ([]string, []any) {
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Quantity != nil {
		set("quantity", *p.Quantity)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.Sold != nil {
		set("sold", *p.Sold)
	}
	if p.Got != nil {
		set("got", *p.Got)
	}
	return sets, args
}
