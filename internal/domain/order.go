package domain

import "github.com/shopspring/decimal"

// OrderProduct is the snapshot of the ordered product shown in the notification
type OrderProduct struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Order exists only for the duration of one dispatch, it is never stored
type Order struct {
	Product OrderProduct `json:"product"`
	Name    string       `json:"name"`
	Phone   string       `json:"phone"`
}
