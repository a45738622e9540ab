//go:build unit

package queries_test

import (
	"testing"
	"time"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/errs"
	"playpal-booking/internal/usecase/queries"
	"playpal-booking/tests/common/builder"
	queriesmock "playpal-booking/tests/mock/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSlotQueries_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		view          *queries.SlotView
		wantRemaining int64
		wantReclaim   bool
	}{
		{
			name:          "active hold counts down",
			view:          builder.NewSlotBuilder().Held(now.Add(7*time.Minute + 30*time.Second)).BuildView(),
			wantRemaining: 450,
		},
		{
			name:          "deadline equal to now is neither remaining nor reclaimable",
			view:          builder.NewSlotBuilder().Held(now).BuildView(),
			wantRemaining: 0,
		},
		{
			name:        "lapsed hold is reclaimable",
			view:        builder.NewSlotBuilder().Held(now.Add(-time.Second)).BuildView(),
			wantReclaim: true,
		},
		{
			name: "available slot has no countdown",
			view: builder.NewSlotBuilder().BuildView(),
		},
		{
			name: "booked slot has no countdown",
			view: builder.NewSlotBuilder().Booked().BuildView(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := queriesmock.NewMockSlotReadStore(ctrl)
			store.EXPECT().FindByID(gomock.Any(), int64(42)).Return(tt.view, nil)

			got, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).GetByID(t.Context(), 42)

			require.NoError(t, err)
			assert.Equal(t, tt.wantRemaining, got.HoldRemainingSeconds)
			assert.Equal(t, tt.wantReclaim, got.Reclaimable)
		})
	}
}

func TestSlotQueries_GetByID_Errors(t *testing.T) {
	t.Run("non-positive id is rejected before the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockSlotReadStore(ctrl)

		_, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).GetByID(t.Context(), 0)

		assert.True(t, errs.Is(err, errs.ErrInvalidRequest))
	})

	t.Run("missing slot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockSlotReadStore(ctrl)
		store.EXPECT().FindByID(gomock.Any(), int64(9)).
			Return(nil, infra.WrapRepoErr("slot not found", nil, infra.KindNotFound))

		_, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).GetByID(t.Context(), 9)

		assert.True(t, errs.Is(err, errs.ErrSlotNotFound))
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockSlotReadStore(ctrl)
		store.EXPECT().FindByID(gomock.Any(), int64(9)).
			Return(nil, infra.WrapRepoErr("failed to find slot by ID", assert.AnError))

		_, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).GetByID(t.Context(), 9)

		assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
	})
}

func TestSlotQueries_GetByID_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := queriesmock.NewMockSlotReadStore(ctrl)
	view := builder.NewSlotBuilder().BuildView()
	view.Status = "held" // no deadline
	store.EXPECT().FindByID(gomock.Any(), int64(42)).Return(view, nil)

	_, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).GetByID(t.Context(), 42)

	assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
}

func TestSlotQueries_ListByVenueAndDate(t *testing.T) {
	t.Run("queries the whole UTC day", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockSlotReadStore(ctrl)

		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		store.EXPECT().FindByVenueBetween(gomock.Any(), int64(1), from, from.AddDate(0, 0, 1)).
			Return([]*queries.SlotView{builder.NewSlotBuilder().Held(now.Add(time.Minute)).BuildView()}, nil)

		// mid-day in another zone still maps to the same UTC day
		date := time.Date(2025, 6, 1, 15, 0, 0, 0, time.FixedZone("JST", 9*60*60))
		views, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).ListByVenueAndDate(t.Context(), 1, date)

		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, int64(60), views[0].HoldRemainingSeconds)
	})

	t.Run("invalid venue", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockSlotReadStore(ctrl)

		_, err := queries.NewSlotQueries(store, clock.NewMockClock(now)).ListByVenueAndDate(t.Context(), 0, now)

		assert.True(t, errs.Is(err, errs.ErrInvalidRequest))
	})
}
