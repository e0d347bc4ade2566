package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies a transaction as money out or money in
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// IsValid reports whether t is one of the supported transaction types
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// Transaction represents a single financial record owned by a user.
// The engine only ever reads or writes transactions through predicates
// scoped by user_id; the field is never caller-controlled.
type Transaction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Amount        float64            `bson:"amount" json:"amount"`
	Date          time.Time          `bson:"date" json:"date"`
	Category      string             `bson:"category" json:"category"`
	Subcategory   string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Type          TransactionType    `bson:"type" json:"type"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	PaymentMethod string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	Merchant      string             `bson:"merchant,omitempty" json:"merchant,omitempty"`
	Status        string             `bson:"status,omitempty" json:"status,omitempty"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
