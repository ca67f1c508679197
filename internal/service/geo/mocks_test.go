package geo

import (
	"context"
	"sync"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

type placeLookupMock struct {
	mu             sync.Mutex
	queries        []string
	SearchTextFunc func(ctx context.Context, query string) (*domain.Place, error)
}

func (m *placeLookupMock) SearchText(ctx context.Context, query string) (*domain.Place, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.SearchTextFunc(ctx, query)
}

type storeRepoMock struct {
	mu              sync.Mutex
	listCalls       int
	GetByNameFunc   func(ctx context.Context, name string) (*domain.StoreLocation, error)
	UpsertFunc      func(ctx context.Context, loc domain.StoreLocation) (*domain.StoreLocation, error)
	ListLocatedFunc func(ctx context.Context) ([]domain.StoreLocation, error)
}

func (m *storeRepoMock) GetByName(ctx context.Context, name string) (*domain.StoreLocation, error) {
	return m.GetByNameFunc(ctx, name)
}

func (m *storeRepoMock) Upsert(ctx context.Context, loc domain.StoreLocation) (*domain.StoreLocation, error) {
	return m.UpsertFunc(ctx, loc)
}

func (m *storeRepoMock) ListLocated(ctx context.Context) ([]domain.StoreLocation, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	return m.ListLocatedFunc(ctx)
}

func (m *storeRepoMock) listed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

type issuerListerMock struct {
	ListIssuerNamesFunc func(ctx context.Context) ([]string, error)
}

func (m *issuerListerMock) ListIssuerNames(ctx context.Context) ([]string, error) {
	return m.ListIssuerNamesFunc(ctx)
}

type enricherMock struct {
	EnrichAndSyncFunc func(ctx context.Context, name string) (*domain.StoreLocation, error)
}

func (m *enricherMock) EnrichAndSync(ctx context.Context, name string) (*domain.StoreLocation, error) {
	return m.EnrichAndSyncFunc(ctx, name)
}
