package response

import (
	"time"

	"playpal-booking/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type SlotResponse struct {
	ID                   int64      `json:"id"`
	VenueID              int64      `json:"venue_id"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              time.Time  `json:"end_time"`
	PriceCents           int64      `json:"price_cents"`
	Status               string     `json:"status"`
	HeldUntil            *time.Time `json:"held_until,omitempty"`
	HoldRemainingSeconds int64      `json:"hold_remaining_seconds"`
	Reclaimable          bool       `json:"reclaimable"`
}

func FromSlotView(v *queries.SlotView) (*SlotResponse, error) {
	var res SlotResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromSlotViews(vs []*queries.SlotView) ([]*SlotResponse, error) {
	res := make([]*SlotResponse, 0, len(vs))
	for _, v := range vs {
		r, err := FromSlotView(v)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}
