package services

import (
	"sodastock/internal/domain"
	"sodastock/internal/provider"
)

type StockService struct {
	Prov *provider.Provider
}

func NewStockService(prov *provider.Provider) *StockService {
	return &StockService{Prov: prov}
}

func (s *StockService) List(nameLike, orderBy string) ([]domain.Soda, error) {
	return s.Prov.Query(provider.Collection(), provider.Filter{NameLike: nameLike}, orderBy)
}

func (s *StockService) Get(id int64) (domain.Soda, bool, error) {
	return s.Prov.GetByID(id)
}

func (s *StockService) Create(patch domain.SodaPatch) (int64, error) {
	return s.Prov.Insert(provider.Collection(), patch)
}

func (s *StockService) Update(id int64, patch domain.SodaPatch) (int64, error) {
	return s.Prov.Update(provider.Item(id), patch, provider.Filter{})
}

// Sell reports whether a unit was actually sold; false means the row was
// out of stock or gone.
func (s *StockService) Sell(id int64) (bool, error) {
	n, err := s.Prov.Sell(id)
	return n > 0, err
}

func (s *StockService) Receive(id int64) (bool, error) {
	n, err := s.Prov.Receive(id)
	return n > 0, err
}

func (s *StockService) Delete(id int64) (int64, error) {
	return s.Prov.Delete(provider.Item(id), provider.Filter{})
}

func (s *StockService) DeleteAll() (int64, error) {
	return s.Prov.Delete(provider.Collection(), provider.Filter{})
}

// Revision exposes the change counter for pull-based staleness checks.
func (s *StockService) Revision() uint64 {
	return s.Prov.Notifier().Revision()
}

// Availability maps an on-hand count to a display status for the list.
func Availability(qty int64) string {
	switch {
	case qty >= 5:
		return "IN_STOCK"
	case qty > 0:
		return "LOW_STOCK"
	default:
		return "OUT_OF_STOCK"
	}
}
