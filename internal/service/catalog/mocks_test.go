package catalog

import (
	"context"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

type productRepoMock struct {
	GetByIdentifierFunc func(ctx context.Context, identifier string) (*domain.Product, error)
	SearchFunc          func(ctx context.Context, q string, limit uint64) ([]domain.Product, error)
	ListBarcodelessFunc func(ctx context.Context) ([]domain.CatalogEntry, error)
	ListAllFunc         func(ctx context.Context) ([]domain.CatalogEntry, error)
	UpdateNameFunc      func(ctx context.Context, id int64, name string) error
	DeleteFunc          func(ctx context.Context, id int64) error
}

func (m *productRepoMock) GetByIdentifier(ctx context.Context, identifier string) (*domain.Product, error) {
	return m.GetByIdentifierFunc(ctx, identifier)
}

func (m *productRepoMock) Search(ctx context.Context, q string, limit uint64) ([]domain.Product, error) {
	return m.SearchFunc(ctx, q, limit)
}

func (m *productRepoMock) ListBarcodeless(ctx context.Context) ([]domain.CatalogEntry, error) {
	return m.ListBarcodelessFunc(ctx)
}

func (m *productRepoMock) ListAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	return m.ListAllFunc(ctx)
}

func (m *productRepoMock) UpdateName(ctx context.Context, id int64, name string) error {
	return m.UpdateNameFunc(ctx, id, name)
}

func (m *productRepoMock) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

type priceRepoMock struct {
	HistoryFunc          func(ctx context.Context, productID int64, limit int) ([]domain.PricePoint, error)
	LatestByProductsFunc func(ctx context.Context, productIDs []int64) ([]domain.LatestPrice, error)
	ReassignProductFunc  func(ctx context.Context, fromID, toID int64) (int64, error)
}

func (m *priceRepoMock) History(ctx context.Context, productID int64, limit int) ([]domain.PricePoint, error) {
	return m.HistoryFunc(ctx, productID, limit)
}

func (m *priceRepoMock) LatestByProducts(ctx context.Context, productIDs []int64) ([]domain.LatestPrice, error) {
	return m.LatestByProductsFunc(ctx, productIDs)
}

func (m *priceRepoMock) ReassignProduct(ctx context.Context, fromID, toID int64) (int64, error) {
	return m.ReassignProductFunc(ctx, fromID, toID)
}

type statsRepoMock struct {
	StatsFunc func(ctx context.Context) (*domain.CatalogStats, error)
}

func (m *statsRepoMock) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return m.StatsFunc(ctx)
}

type txManagerMock struct {
	calls       int
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.RunInTxFunc == nil {
		return fn(ctx)
	}
	return m.RunInTxFunc(ctx, fn)
}
