package store_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
}

func (s *StoreTestSuite) TestInsertAndSelect() {
	p := testutil.Product(s.T(), s.store, "Whey Protein", "29.99", 10)

	got, err := store.SelectOneByField[domain.Product](s.ctx, s.store, "id", p.ID)
	s.Require().NoError(err)
	s.Equal("Whey Protein", got.Title)
	s.True(decimal.RequireFromString("29.99").Equal(got.Price))

	all, err := store.SelectAll[domain.Product](s.ctx, s.store)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *StoreTestSuite) TestSelectOneMissingIsNotFound() {
	_, err := store.SelectOneByField[domain.Product](s.ctx, s.store, "id", uuid.NewString())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *StoreTestSuite) TestSelectManyByFieldAndIn() {
	cat := testutil.Category(s.T(), s.store, "Supplements")
	a := testutil.Product(s.T(), s.store, "Creatine", "19.00", 3)
	b := testutil.Product(s.T(), s.store, "Shaker", "5.00", 3)
	_, err := s.store.Update(s.ctx, &domain.Product{}, map[string]any{"category_id": cat.ID}, store.Field{Column: "id", Value: a.ID})
	s.Require().NoError(err)

	inCat, err := store.SelectManyByField[domain.Product](s.ctx, s.store, "category_id", cat.ID)
	s.Require().NoError(err)
	s.Require().Len(inCat, 1)
	s.Equal(a.ID, inCat[0].ID)

	both, err := store.SelectManyIn[domain.Product](s.ctx, s.store, "id", []string{a.ID, b.ID})
	s.Require().NoError(err)
	s.Len(both, 2)

	none, err := store.SelectManyIn[domain.Product](s.ctx, s.store, "id", nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreTestSuite) TestSearch() {
	testutil.Product(s.T(), s.store, "Vegan Protein Bar", "2.50", 100)
	testutil.Product(s.T(), s.store, "Resistance Band", "12.00", 5)

	found, err := store.Search[domain.Product](s.ctx, s.store, "protein", "title", "description")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Vegan Protein Bar", found[0].Title)
}

func (s *StoreTestSuite) TestDelete() {
	p := testutil.Product(s.T(), s.store, "Kettlebell", "40.00", 2)

	n, err := s.store.Delete(s.ctx, &domain.Product{}, "id", p.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	n, err = s.store.Delete(s.ctx, &domain.Product{}, "id", p.ID)
	s.Require().NoError(err)
	s.EqualValues(0, n)
}

func (s *StoreTestSuite) TestMultiFieldPredicates() {
	cat := testutil.Category(s.T(), s.store, "Strength")
	p := testutil.Product(s.T(), s.store, "Barbell", "120.00", 3)
	testutil.Product(s.T(), s.store, "Barbell", "80.00", 1)
	_, err := s.store.Update(s.ctx, &domain.Product{}, map[string]any{"category_id": cat.ID}, store.Field{Column: "id", Value: p.ID})
	s.Require().NoError(err)

	got, err := store.SelectOneWhere[domain.Product](s.ctx, s.store,
		store.Field{Column: "title", Value: "Barbell"},
		store.Field{Column: "category_id", Value: cat.ID},
	)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = store.SelectOneWhere[domain.Product](s.ctx, s.store,
		store.Field{Column: "id", Value: p.ID},
		store.Field{Column: "stock", Value: 99},
	)
	s.ErrorIs(err, domain.ErrNotFound)

	// Guarded update: only while the row still holds the expected value
	n, err := s.store.Update(s.ctx, &domain.Product{}, map[string]any{"stock": 10},
		store.Field{Column: "id", Value: p.ID},
		store.Field{Column: "stock", Value: 2},
	)
	s.Require().NoError(err)
	s.EqualValues(0, n)
	s.Equal(3, testutil.Stock(s.T(), s.store, p.ID))

	n, err = s.store.DeleteWhere(s.ctx, &domain.Product{},
		store.Field{Column: "id", Value: p.ID},
		store.Field{Column: "title", Value: []string{"Dumbbell", "Kettlebell"}},
	)
	s.Require().NoError(err)
	s.EqualValues(0, n)

	n, err = s.store.DeleteWhere(s.ctx, &domain.Product{},
		store.Field{Column: "id", Value: p.ID},
		store.Field{Column: "title", Value: []string{"Barbell", "Kettlebell"}},
	)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	_, err = s.store.DeleteWhere(s.ctx, &domain.Product{})
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *StoreTestSuite) TestDecrementIsGuarded() {
	p := testutil.Product(s.T(), s.store, "Yoga Mat", "25.00", 2)
	where := store.Field{Column: "id", Value: p.ID}

	n, err := s.store.Decrement(s.ctx, &domain.Product{}, "stock", 2, where)
	s.Require().NoError(err)
	s.EqualValues(1, n)
	s.Equal(0, testutil.Stock(s.T(), s.store, p.ID))

	n, err = s.store.Decrement(s.ctx, &domain.Product{}, "stock", 1, where)
	s.Require().NoError(err)
	s.EqualValues(0, n)
	s.Equal(0, testutil.Stock(s.T(), s.store, p.ID))

	n, err = s.store.Increment(s.ctx, &domain.Product{}, "stock", 4, where)
	s.Require().NoError(err)
	s.EqualValues(1, n)
	s.Equal(4, testutil.Stock(s.T(), s.store, p.ID))
}

func (s *StoreTestSuite) TestTransactionRollsBack() {
	p := testutil.Product(s.T(), s.store, "Foam Roller", "15.00", 5)
	boom := errors.New("boom")

	err := s.store.Transaction(s.ctx, func(tx *store.Store) error {
		if _, err := tx.Decrement(s.ctx, &domain.Product{}, "stock", 3, store.Field{Column: "id", Value: p.ID}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.Equal(5, testutil.Stock(s.T(), s.store, p.ID))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestDuplicateKeyIsConflict(t *testing.T) {
	s := testutil.NewStore(t)
	u := testutil.User(t, s, domain.RoleUser)

	dup := *u
	dup.ID = uuid.NewString()
	err := s.Insert(context.Background(), &dup)
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStorageFailure))
}
