package models

// ReservationLine is one product's share of a stock reservation.
type ReservationLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Reservation records the stock decrements committed by a successful
// reservation so a later failure can release them.
type Reservation struct {
	Lines []ReservationLine `json:"lines"`
}
