package models

import "time"

type PaymentMethod struct {
	ID             string `bson:"_id,omitempty" json:"payment_method_id"`
	InstitutionID  string `bson:"institution_id" json:"institution_id"`
	Type           string `bson:"type" json:"type"`
	Last4          string `bson:"last4" json:"last4"`
	Expiry         string `bson:"expiry" json:"expiry"`
	DefaultPayment bool   `bson:"default_payment" json:"default_payment"`

	Timestamps `bson:",inline"`
}

type BillingRecord struct {
	ID            string    `bson:"_id,omitempty" json:"billing_history_id"`
	InstitutionID string    `bson:"institution_id" json:"institution_id"`
	Date          time.Time `bson:"date" json:"date"`
	Description   string    `bson:"description" json:"description"`
	Amount        float64   `bson:"amount" json:"amount"`
	Status        string    `bson:"status" json:"status"`

	Timestamps `bson:",inline"`
}
