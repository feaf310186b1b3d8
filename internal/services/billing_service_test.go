package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

func TestAddPaymentMethodValidation(t *testing.T) {
	svc := NewBillingService(newMemStore[models.PaymentMethod](), newMemStore[models.BillingRecord]())

	_, err := svc.AddPaymentMethod(context.Background(), &models.PaymentMethod{InstitutionID: "i1", Type: "visa", Last4: "123"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.AddPaymentMethod(context.Background(), &models.PaymentMethod{Type: "visa", Last4: "1234"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestDefaultPaymentMethodIsUnique(t *testing.T) {
	methods := newMemStore[models.PaymentMethod]()
	svc := NewBillingService(methods, newMemStore[models.BillingRecord]())
	ctx := context.Background()

	first, err := svc.AddPaymentMethod(ctx, &models.PaymentMethod{InstitutionID: "i1", Type: "visa", Last4: "1111", DefaultPayment: true})
	require.NoError(t, err)
	assert.True(t, first.DefaultPayment)

	second, err := svc.AddPaymentMethod(ctx, &models.PaymentMethod{InstitutionID: "i1", Type: "amex", Last4: "2222", DefaultPayment: true})
	require.NoError(t, err)

	other, err := svc.AddPaymentMethod(ctx, &models.PaymentMethod{InstitutionID: "i2", Type: "visa", Last4: "3333", DefaultPayment: true})
	require.NoError(t, err)

	defaults := func(inst string) []string {
		rows, err := svc.PaymentMethods(ctx, inst)
		require.NoError(t, err)
		var ids []string
		for _, m := range rows {
			if m.DefaultPayment {
				ids = append(ids, m.ID)
			}
		}
		return ids
	}
	assert.Equal(t, []string{second.ID}, defaults("i1"))
	assert.Equal(t, []string{other.ID}, defaults("i2"))

	require.NoError(t, svc.SetDefaultPaymentMethod(ctx, "i1", first.ID))
	assert.Equal(t, []string{first.ID}, defaults("i1"))

	err = svc.SetDefaultPaymentMethod(ctx, "i1", other.ID)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.Equal(t, []string{other.ID}, defaults("i2"))
}

func TestBillingTotal(t *testing.T) {
	history := newMemStore[models.BillingRecord]()
	svc := NewBillingService(newMemStore[models.PaymentMethod](), history)
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

	history.put(models.BillingRecord{InstitutionID: "i1", Date: day(1), Amount: 100})
	history.put(models.BillingRecord{InstitutionID: "i1", Date: day(15), Amount: 50.5})
	history.put(models.BillingRecord{InstitutionID: "i1", Date: day(31), Amount: 20})
	history.put(models.BillingRecord{InstitutionID: "i2", Date: day(15), Amount: 999})

	total, err := svc.Total(context.Background(), "i1", day(1), day(15))
	require.NoError(t, err)
	assert.InDelta(t, 150.5, total, 0.001)

	total, err = svc.Total(context.Background(), "i1", day(2), day(30))
	require.NoError(t, err)
	assert.InDelta(t, 50.5, total, 0.001)

	_, err = svc.Total(context.Background(), "i1", day(30), day(2))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	rows, err := svc.History(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Date.Equal(day(31)))
}
