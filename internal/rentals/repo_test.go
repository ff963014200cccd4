package rentals

import (
	"context"
	"testing"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRentalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	rentals := `
CREATE TABLE IF NOT EXISTS rentals (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL,
  pickup_date DATETIME,
  due_date DATETIME,
  duration_days INTEGER,
  phone TEXT,
  address TEXT,
  notes TEXT,
  final_amount NUMERIC,
  total_amount NUMERIC,
  deposit_amount NUMERIC,
  completed_at DATETIME,
  legacy_date_completed DATETIME,
  date_added DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(rentals).Error)
	return db
}

func seedRental(t *testing.T, db *gorm.DB, itemID, userID uuid.UUID, qty int, status enums.RentalStatus) *models.Rental {
	t.Helper()

	rental := &models.Rental{
		ID:       uuid.New(),
		ItemID:   itemID,
		UserID:   userID,
		ItemName: "Test Item",
		Quantity: qty,
		Status:   status,
	}
	require.NoError(t, db.Create(rental).Error)
	return rental
}

func TestRepository_SumActiveHoldQuantityCountsOnlyActive(t *testing.T) {
	db := setupRentalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itemID := uuid.New()
	seedRental(t, db, itemID, uuid.New(), 2, enums.RentalStatusActive)
	seedRental(t, db, itemID, uuid.New(), 3, enums.RentalStatusActive)
	seedRental(t, db, itemID, uuid.New(), 4, enums.RentalStatusPending)
	seedRental(t, db, itemID, uuid.New(), 5, enums.RentalStatusCompleted)
	seedRental(t, db, uuid.New(), uuid.New(), 9, enums.RentalStatusActive)

	held, err := repo.SumActiveHoldQuantity(ctx, itemID)
	require.NoError(t, err)
	require.Equal(t, 5, held)
}

func TestRepository_HasPendingForItemScopedToUser(t *testing.T) {
	db := setupRentalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itemID := uuid.New()
	userID := uuid.New()
	seedRental(t, db, itemID, userID, 1, enums.RentalStatusPending)

	found, err := repo.HasPendingForItem(ctx, userID, itemID)
	require.NoError(t, err)
	require.True(t, found)

	other, err := repo.HasPendingForItem(ctx, uuid.New(), itemID)
	require.NoError(t, err)
	require.False(t, other)
}

func TestRepository_ExistsForItemAnyStatus(t *testing.T) {
	db := setupRentalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itemID := uuid.New()
	seedRental(t, db, itemID, uuid.New(), 1, enums.RentalStatusCompleted)

	found, err := repo.ExistsForItem(ctx, itemID)
	require.NoError(t, err)
	require.True(t, found)

	none, err := repo.ExistsForItem(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, none)
}

func TestRepository_ListByStatuses(t *testing.T) {
	db := setupRentalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	completed := seedRental(t, db, uuid.New(), uuid.New(), 1, enums.RentalStatusCompleted)
	pending := seedRental(t, db, uuid.New(), uuid.New(), 1, enums.RentalStatusPending)

	rentals, err := repo.ListByStatuses(ctx, []enums.RentalStatus{enums.RentalStatusCompleted})
	require.NoError(t, err)

	var sawCompleted bool
	for _, rental := range rentals {
		require.Equal(t, enums.RentalStatusCompleted, rental.Status)
		require.NotEqual(t, pending.ID, rental.ID)
		if rental.ID == completed.ID {
			sawCompleted = true
		}
	}
	require.True(t, sawCompleted)
}

func TestRepository_UpdatePersistsTransition(t *testing.T) {
	db := setupRentalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rental := seedRental(t, db, uuid.New(), uuid.New(), 1, enums.RentalStatusActive)
	completed := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	rental.Status = enums.RentalStatusCompleted
	rental.CompletedAt = &completed
	require.NoError(t, repo.Update(ctx, rental))

	got, err := repo.GetByID(ctx, rental.ID)
	require.NoError(t, err)
	require.Equal(t, enums.RentalStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}
