package models

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Order statuses. A failed order is terminal and never retried.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
	OrderStatusFailed    = "failed"
)

// Order is one conversion or limit-order attempt, successful or not.
// Only Status (and Error, on failure paths) changes after creation.
type Order struct {
	OrderID   string  `gorm:"primaryKey;size:64"`
	ChatID    int64   `gorm:"index"`
	FromAsset string  `gorm:"size:16"`
	ToAsset   string  `gorm:"size:16"`
	Amount    float64
	Status    string `gorm:"size:16;index"`
	Error     string
	Timestamp time.Time `gorm:"autoCreateTime;index"`
}

var ErrOrderNotFound = errors.New("order not found")

// NewOrderID returns a random hex identifier for orders that never got an
// exchange-issued id (failure paths).
func NewOrderID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp so the caller still gets a usable key.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
	}
	return hex.EncodeToString(buf)
}

// OrderStore persists orders in the embedded database.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Insert(order *Order) error {
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}
	return s.db.Create(order).Error
}

// UpdateStatus changes only the status column; every other field is immutable
// after insert.
func (s *OrderStore) UpdateStatus(orderID, status string) error {
	res := s.db.Model(&Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Get returns the order only if it belongs to the given chat.
func (s *OrderStore) Get(orderID string, chatID int64) (*Order, error) {
	var order Order
	err := s.db.Where("order_id = ? AND chat_id = ?", orderID, chatID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Recent returns the latest orders for a chat, newest first.
func (s *OrderStore) Recent(chatID int64, limit int) ([]Order, error) {
	var orders []Order
	err := s.db.Where("chat_id = ?", chatID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
