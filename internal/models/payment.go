package models

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// RegistrationResponse is returned when a user registers for a webinar:
// either the seat is confirmed immediately (free webinars) or a gateway
// checkout session must be completed first.
type RegistrationResponse struct {
	Registration *WebinarRegistration `json:"registration"`
	Checkout     *CheckoutSession     `json:"checkout,omitempty"`
}

// PurchaseResponse mirrors RegistrationResponse for service purchases.
type PurchaseResponse struct {
	Purchase *ServicePurchase `json:"purchase"`
	Checkout *CheckoutSession `json:"checkout,omitempty"`
}
