package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *dbm.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*dbm.Payment, error)
	FindByOrderIDForUser(ctx context.Context, orderID string, userID uuid.UUID) (*dbm.Payment, error)
	UpdateByOrderID(ctx context.Context, orderID string, fields map[string]interface{}) error
	// UpdateUnsettled applies fields unless the payment is already paid.
	// It reports whether the row changed.
	UpdateUnsettled(ctx context.Context, orderID string, fields map[string]interface{}) (bool, error)
	SumRevenue(ctx context.Context) (float64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *dbm.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*dbm.Payment, error) {
	var payment dbm.Payment
	err := r.db.WithContext(ctx).First(&payment, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByOrderIDForUser(ctx context.Context, orderID string, userID uuid.UUID) (*dbm.Payment, error) {
	var payment dbm.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateByOrderID(ctx context.Context, orderID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Payment{}).
		Where("order_id = ?", orderID).
		Updates(fields).Error
}

func (r *paymentRepository) UpdateUnsettled(ctx context.Context, orderID string, fields map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.Payment{}).
		Where("order_id = ? AND payment_status NOT IN ?", orderID, settledStatuses).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

var settledStatuses = []dbm.PaymentStatus{dbm.PaymentPaid, dbm.PaymentPaidOver}

func (r *paymentRepository) SumRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&dbm.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payment_status IN ?", settledStatuses).
		Scan(&total).Error
	return total, err
}
