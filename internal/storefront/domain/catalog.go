package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Money is an amount in minor units (cents).
type Money int64

// String renders the amount with two decimal places, e.g. "12.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Stock units.
const (
	UnitPieces = "pieces"
	UnitKg     = "kg"
	UnitLiters = "liters"
	UnitPacks  = "packs"
	UnitDozens = "dozens"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
}

type Stock struct {
	Quantity int
	Unit     string
}

type Image struct {
	ID  uuid.UUID
	URL string
}

type Rating struct {
	ID        uuid.UUID
	AccountID string
	Rating    float64
	Review    string
}

type Product struct {
	ID             uuid.UUID
	Name           string
	Subtitle       string
	Description    json.RawMessage
	SellingPrice   Money
	MaxRetailPrice Money
	CategoryID     uuid.UUID
	Stock          *Stock
	Images         []Image
	Ratings        []Rating
	CreatedAt      time.Time
}

type WishlistEntry struct {
	ID        uuid.UUID
	AccountID string
	ProductID uuid.UUID
	CreatedAt time.Time
}
