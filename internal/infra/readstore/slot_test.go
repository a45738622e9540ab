//go:build unit

package readstore

import (
	"context"
	"testing"
	"time"

	"playpal-booking/internal/infra"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSlotReadQueries struct {
	mock.Mock
}

func (m *MockSlotReadQueries) GetSlotByID(ctx context.Context, db querier.DBTX, id int64) (querier.Slot, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(querier.Slot), args.Error(1)
}

func (m *MockSlotReadQueries) ListSlotsByVenueBetween(ctx context.Context, db querier.DBTX, arg querier.ListSlotsByVenueBetweenParams) ([]querier.Slot, error) {
	args := m.Called(ctx, db, arg)
	rows, _ := args.Get(0).([]querier.Slot)
	return rows, args.Error(1)
}

func TestSlotReadStore_FindByID(t *testing.T) {
	heldUntil := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	b := builder.NewSlotBuilder().Held(heldUntil)

	tests := []struct {
		name      string
		mockRow   querier.Slot
		mockError error
		wantKind  infra.RepositoryErrorKind
	}{
		{name: "success", mockRow: b.BuildInfra()},
		{name: "not found", mockError: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", mockError: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockSlotReadQueries)
			mockQueries.On("GetSlotByID", mock.Anything, mock.Anything, int64(42)).Return(tt.mockRow, tt.mockError)

			view, err := NewSlotReadStore(mockQueries, nil).FindByID(context.Background(), 42)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(b.BuildView(), view); diff != "" {
				t.Errorf("view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSlotReadStore_FindByVenueBetween(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	first := builder.NewSlotBuilder()
	second := builder.NewSlotBuilder().With(func(b *builder.SlotBuilder) {
		b.ID = 43
		b.StartTime = b.EndTime
		b.EndTime = b.StartTime.Add(time.Hour)
	}).Booked()

	mockQueries := new(MockSlotReadQueries)
	mockQueries.On("ListSlotsByVenueBetween", mock.Anything, mock.Anything, querier.ListSlotsByVenueBetweenParams{
		VenueID: 1,
		From:    builder.Timestamptz(from),
		To:      builder.Timestamptz(to),
	}).Return([]querier.Slot{first.BuildInfra(), second.BuildInfra()}, nil)

	views, err := NewSlotReadStore(mockQueries, nil).FindByVenueBetween(context.Background(), 1, from, to)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(42), views[0].ID)
	assert.Equal(t, "booked", views[1].Status)
	assert.Nil(t, views[1].HeldUntil)
	mockQueries.AssertExpectations(t)
}
