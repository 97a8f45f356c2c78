package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sodastock/internal/domain"
	"sodastock/internal/repos"
)

// Filter narrows collection-scoped operations. Ignored for item locators,
// where the key already pins the row.
type Filter struct{ NameLike string }

// Provider is the single choke point for reads and writes to the soda
// table. It routes operations by locator, enforces field-level validation,
// and notifies subscribers of every successful mutation.
type Provider struct {
	sodas    *repos.SodaRepo
	router   *router
	notifier *Notifier
}

func New(sodas *repos.SodaRepo) *Provider {
	return &Provider{
		sodas:    sodas,
		router:   newRouter(),
		notifier: NewNotifier(),
	}
}

func (p *Provider) Notifier() *Notifier { return p.notifier }

// Query returns matching rows. An item locator for a missing id yields an
// empty slice, not an error.
func (p *Provider) Query(loc Locator, f Filter, orderBy string) ([]domain.Soda, error) {
	switch code, id := p.router.match(loc); code {
	case matchSodas:
		return p.sodas.List(repos.ListOptions{NameLike: f.NameLike, OrderBy: orderBy})
	case matchSodaID:
		s, err := p.sodas.Get(id)
		if errors.Is(err, sql.ErrNoRows) {
			return []domain.Soda{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.Soda{s}, nil
	default:
		return nil, fmt.Errorf("%w: cannot query %q", ErrUnknownLocator, loc)
	}
}

// GetByID is the item-read convenience over Query.
func (p *Provider) GetByID(id int64) (domain.Soda, bool, error) {
	rows, err := p.Query(Item(id), Filter{}, "")
	if err != nil || len(rows) == 0 {
		return domain.Soda{}, false, err
	}
	return rows[0], true, nil
}

// Insert validates the candidate, persists it, and notifies both the
// collection and the new row's key. Only the collection locator accepts
// inserts.
func (p *Provider) Insert(loc Locator, patch domain.SodaPatch) (int64, error) {
	code, _ := p.router.match(loc)
	if code != matchSodas {
		return 0, fmt.Errorf("%w: insert not supported for %q", ErrUnknownLocator, loc)
	}
	if err := validateInsert(patch); err != nil {
		return 0, err
	}

	id, err := p.sodas.Insert(patch)
	if err != nil {
		return 0, &PersistenceError{Op: "insert", Err: err}
	}
	p.notifier.publish(Change{Locator: Collection()})
	p.notifier.publish(Change{Locator: Item(id), ID: id})
	return id, nil
}

// Update applies only the fields present in the patch. An empty patch
// short-circuits to 0 rows without touching storage or notifying. A
// missing id is 0 rows, not an error.
func (p *Provider) Update(loc Locator, patch domain.SodaPatch, f Filter) (int64, error) {
	if err := validatePatch(patch); err != nil {
		return 0, err
	}
	if patch.Empty() {
		return 0, nil
	}

	switch code, id := p.router.match(loc); code {
	case matchSodas:
		n, err := p.sodas.UpdateWhere(f.NameLike, patch)
		if err != nil {
			return 0, &PersistenceError{Op: "update", Err: err}
		}
		if n > 0 {
			p.notifier.publish(Change{Locator: Collection()})
		}
		return n, nil
	case matchSodaID:
		n, err := p.sodas.Update(id, patch)
		if err != nil {
			return 0, &PersistenceError{Op: "update", Err: err}
		}
		if n > 0 {
			p.notifier.publish(Change{Locator: Item(id), ID: id})
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: update not supported for %q", ErrUnknownLocator, loc)
	}
}

// Delete removes the addressed row, or every matching row for the
// collection locator. Notifies only when something was actually removed.
func (p *Provider) Delete(loc Locator, f Filter) (int64, error) {
	switch code, id := p.router.match(loc); code {
	case matchSodas:
		n, err := p.sodas.DeleteAll(f.NameLike)
		if err != nil {
			return 0, &PersistenceError{Op: "delete", Err: err}
		}
		if n > 0 {
			p.notifier.publish(Change{Locator: Collection()})
		}
		return n, nil
	case matchSodaID:
		n, err := p.sodas.Delete(id)
		if err != nil {
			return 0, &PersistenceError{Op: "delete", Err: err}
		}
		if n > 0 {
			p.notifier.publish(Change{Locator: Item(id), ID: id})
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: delete not supported for %q", ErrUnknownLocator, loc)
	}
}

// Sell decrements quantity and bumps the sold counter atomically. Selling
// an out-of-stock row is a no-op: no write, no notification.
func (p *Provider) Sell(id int64) (int64, error) {
	n, err := p.sodas.Sell(id)
	if err != nil {
		return 0, &PersistenceError{Op: "sell", Err: err}
	}
	if n > 0 {
		p.notifier.publish(Change{Locator: Item(id), ID: id})
	}
	return n, nil
}

// Receive increments quantity and bumps the got counter atomically.
func (p *Provider) Receive(id int64) (int64, error) {
	n, err := p.sodas.Receive(id)
	if err != nil {
		return 0, &PersistenceError{Op: "receive", Err: err}
	}
	if n > 0 {
		p.notifier.publish(Change{Locator: Item(id), ID: id})
	}
	return n, nil
}

// validateInsert requires name and price; quantity is optional but must
// not be negative when supplied. The repository never defaults an absent
// quantity; that belongs to the form layer.
func validateInsert(p domain.SodaPatch) error {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if p.Price == nil {
		return &ValidationError{Field: "price", Reason: "required"}
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}

// validatePatch checks only the fields present. Negative quantity is
// rejected here too, the same rule as insert.
func validatePatch(p domain.SodaPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}
