package invoice

import "time"

// Data is the ephemeral invoice document built per completion event. It is
// never persisted; the renderer is a pure function of this structure.
type Data struct {
	InvoiceNumber string
	Date          time.Time
	IsPaid        bool

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Items []LineItem

	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TaxRate        float64
	Total          float64
	GSTEnabled     bool

	TransactionID string
	PaymentMethod string

	Company Company
}

// LineItem is one row of the itemized table.
type LineItem struct {
	Description string
	Details     string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

// Company is the issuer identity block printed in the header.
type Company struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	GSTNumber string
}
