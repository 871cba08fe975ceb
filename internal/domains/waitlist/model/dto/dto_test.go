package dto_test

import (
	"rms/internal/domains/waitlist/model"
	"rms/internal/domains/waitlist/model/dto"
	"rms/internal/domains/waitlist/priority"
	"rms/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRequest_ToModel(t *testing.T) {
	req := dto.JoinRequest{
		CustomerName:  "Budi",
		PartySize:     3,
		PreferredDate: "2025-03-14",
		PreferredTime: "20:00",
	}

	entry, err := req.ToModel("r1", "staff-1")
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, model.StatusActive, entry.Status)
	assert.Equal(t, entry.JoinedAt, entry.CreatedAt)
	require.NotNil(t, entry.PreferredDate)
	assert.Equal(t, "2025-03-14", timezone.Format(*entry.PreferredDate, timezone.DateLayout))
	require.NotNil(t, entry.PreferredTime)
	assert.Equal(t, "20:00", *entry.PreferredTime)

	entry, err = dto.JoinRequest{CustomerName: "Budi", PartySize: 3}.ToModel("r1", "staff-1")
	require.NoError(t, err)
	assert.Nil(t, entry.PreferredDate)
	assert.Nil(t, entry.PreferredTime)

	_, err = dto.JoinRequest{PreferredDate: "14/03/2025"}.ToModel("r1", "staff-1")
	assert.Error(t, err)
}

func TestFreedSlotRequest_RoundTrip(t *testing.T) {
	date, err := timezone.ParseDate("2025-03-14")
	require.NoError(t, err)

	start := timezone.At(date, 21*60+15)

	var req dto.FreedSlotRequest
	req.FromSlot(start, time.Time{}, 4)

	assert.Equal(t, dto.FreedSlotRequest{Date: "2025-03-14", Time: "21:15", Capacity: 4}, req)

	slot, err := req.ToSlot()
	require.NoError(t, err)
	assert.True(t, start.Equal(slot.Start))
	assert.True(t, slot.End.IsZero())
	assert.Equal(t, 4, slot.Capacity)

	req.FromSlot(start, start.Add(90*time.Minute), 4)
	assert.Equal(t, "22:45", req.EndTime)

	slot, err = req.ToSlot()
	require.NoError(t, err)
	assert.True(t, start.Add(90*time.Minute).Equal(slot.End))

	req.FromSlot(start, start.Add(3*time.Hour), 4)
	assert.Equal(t, "00:15", req.EndTime)

	slot, err = req.ToSlot()
	require.NoError(t, err)
	assert.True(t, start.Add(3*time.Hour).Equal(slot.End), "end past midnight rolls to the next day")

	_, err = dto.FreedSlotRequest{Date: "2025-03-14", Time: "late"}.ToSlot()
	assert.Error(t, err)
}

func TestFromRanked(t *testing.T) {
	rows := []model.Waitlist{
		{ID: "w1", CustomerName: "A", PartySize: 2},
		{ID: "w2", CustomerName: "B", PartySize: 4},
	}

	ranked := []priority.Ranked{
		{Entry: priority.Entry{ID: "w2"}, Score: 42.5, Position: 1},
		{Entry: priority.Entry{ID: "gone"}, Score: 30, Position: 2},
		{Entry: priority.Entry{ID: "w1"}, Score: 12, Position: 3},
	}

	res := dto.FromRanked(ranked, rows)

	require.Len(t, res, 2)
	assert.Equal(t, "w2", res[0].ID)
	assert.Equal(t, 1, res[0].Position)
	assert.InDelta(t, 42.5, res[0].Score, 1e-9)
	assert.Equal(t, "w1", res[1].ID)
	assert.Equal(t, 3, res[1].Position)
}
