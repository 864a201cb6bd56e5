package domain

import (
	"strings"
	"time"
)

// CREATE TABLE public.interactions (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id         TEXT NOT NULL,
//     product_id      TEXT NOT NULL,
//     event_type      TEXT NOT NULL,
//     category_code   TEXT,
//     brand           TEXT,
//     price           NUMERIC,
//     event_time      TIMESTAMPTZ DEFAULT NOW()
// );

// InteractionEvent is one raw row of the validated interaction table.
type InteractionEvent struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       string    `gorm:"column:user_id;type:text;not null"`
	ProductID    string    `gorm:"column:product_id;type:text;not null"`
	EventType    string    `gorm:"column:event_type;type:text;not null"`
	CategoryCode *string   `gorm:"column:category_code;type:text"`
	Brand        *string   `gorm:"column:brand;type:text"`
	Price        *float64  `gorm:"column:price;type:numeric"`
	EventTime    time.Time `gorm:"column:event_time"`
}

func (InteractionEvent) TableName() string {
	return "interactions"
}

const (
	EventView     = "view"
	EventCart     = "cart"
	EventPurchase = "purchase"
)

// implicit rating scale
var eventRatings = map[string]float64{
	EventView:     1.0,
	EventCart:     3.0,
	EventPurchase: 5.0,
}

// RatingForEvent maps an event type to its implicit rating.
func RatingForEvent(eventType string) (float64, bool) {
	r, ok := eventRatings[strings.ToLower(strings.TrimSpace(eventType))]
	return r, ok
}

// Interaction is a validated (user, item, rating) fact. It carries the
// product metadata that was attached to the interaction row.
type Interaction struct {
	UserID   string
	ItemID   string
	Rating   float64
	Metadata ProductMetadataFragment
}

// ProductMetadataFragment is the raw product metadata seen on one interaction.
// Fields may be missing or disagree with other fragments of the same item.
type ProductMetadataFragment struct {
	ItemID   string
	Category *string
	Brand    *string
	Price    *float64
}
