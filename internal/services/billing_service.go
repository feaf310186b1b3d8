package services

import (
	"context"
	"time"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

type BillingService interface {
	PaymentMethods(ctx context.Context, institutionID string) ([]models.PaymentMethod, error)
	PaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, in *models.PaymentMethod) (*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, fields map[string]any) error
	DeletePaymentMethod(ctx context.Context, id string) error
	SetDefaultPaymentMethod(ctx context.Context, institutionID, id string) error

	History(ctx context.Context, institutionID string) ([]models.BillingRecord, error)
	Record(ctx context.Context, id string) (*models.BillingRecord, error)
	AddRecord(ctx context.Context, in *models.BillingRecord) (*models.BillingRecord, error)
	UpdateRecord(ctx context.Context, id string, fields map[string]any) error
	Total(ctx context.Context, institutionID string, from, to time.Time) (float64, error)
}

type billingService struct {
	methods mongorepo.RecordStore[models.PaymentMethod]
	history mongorepo.RecordStore[models.BillingRecord]
}

func NewBillingService(methods mongorepo.RecordStore[models.PaymentMethod], history mongorepo.RecordStore[models.BillingRecord]) BillingService {
	return &billingService{methods: methods, history: history}
}

func (s *billingService) PaymentMethods(ctx context.Context, institutionID string) ([]models.PaymentMethod, error) {
	const op = "BillingService.PaymentMethods"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return nil, err
	}
	rows, err := s.methods.List(ctx, mongorepo.Filter{"institution_id": institutionID}, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "payment methods", err)
	}
	return rows, nil
}

func (s *billingService) PaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	const op = "BillingService.PaymentMethod"

	if err := requireID(op, "payment_method_id", id); err != nil {
		return nil, err
	}
	pm, err := s.methods.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "payment method", err)
	}
	return pm, nil
}

// AddPaymentMethod stores card metadata only. A new default displaces the
// previous one.
func (s *billingService) AddPaymentMethod(ctx context.Context, in *models.PaymentMethod) (*models.PaymentMethod, error) {
	const op = "BillingService.AddPaymentMethod"

	if in == nil || in.InstitutionID == "" || in.Type == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "institution_id and type are required", nil)
	}
	if len(in.Last4) != 4 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "last4 must be 4 digits", nil)
	}
	in.ID = ""
	makeDefault := in.DefaultPayment
	in.DefaultPayment = false
	if _, err := s.methods.Create(ctx, in); err != nil {
		return nil, writeErr(op, "payment method", err)
	}
	if makeDefault {
		if err := s.SetDefaultPaymentMethod(ctx, in.InstitutionID, in.ID); err != nil {
			return nil, err
		}
		in.DefaultPayment = true
	}
	return in, nil
}

func (s *billingService) UpdatePaymentMethod(ctx context.Context, id string, fields map[string]any) error {
	const op = "BillingService.UpdatePaymentMethod"

	if err := requireID(op, "payment_method_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, paymentMethodPatch, fields)
	if err != nil {
		return err
	}
	if err := s.methods.Update(ctx, id, set); err != nil {
		return writeErr(op, "payment method", err)
	}
	return nil
}

func (s *billingService) DeletePaymentMethod(ctx context.Context, id string) error {
	const op = "BillingService.DeletePaymentMethod"

	if err := requireID(op, "payment_method_id", id); err != nil {
		return err
	}
	if err := s.methods.Delete(ctx, id); err != nil {
		return writeErr(op, "payment method", err)
	}
	return nil
}

// SetDefaultPaymentMethod clears every other default of the institution, then
// marks id. The writes are independent single-document updates.
func (s *billingService) SetDefaultPaymentMethod(ctx context.Context, institutionID, id string) error {
	const op = "BillingService.SetDefaultPaymentMethod"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return err
	}
	if err := requireID(op, "payment_method_id", id); err != nil {
		return err
	}

	pm, err := s.methods.Get(ctx, id)
	if err != nil {
		return readErr(op, "payment method", err)
	}
	if pm.InstitutionID != institutionID {
		return utils.E(utils.CodeForbidden, op, "payment method belongs to another institution", nil)
	}

	current, err := s.methods.List(ctx, mongorepo.Filter{"institution_id": institutionID, "default_payment": true}, mongorepo.ListOptions{})
	if err != nil {
		return readErr(op, "payment methods", err)
	}
	for _, m := range current {
		if m.ID == id {
			continue
		}
		if err := s.methods.Update(ctx, m.ID, mongorepo.Fields{"default_payment": false}); err != nil {
			return writeErr(op, "payment method", err)
		}
	}
	if err := s.methods.Update(ctx, id, mongorepo.Fields{"default_payment": true}); err != nil {
		return writeErr(op, "payment method", err)
	}
	return nil
}

func (s *billingService) History(ctx context.Context, institutionID string) ([]models.BillingRecord, error) {
	const op = "BillingService.History"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return nil, err
	}
	rows, err := s.history.List(ctx, mongorepo.Filter{"institution_id": institutionID}, mongorepo.ListOptions{SortBy: "date", Desc: true})
	if err != nil {
		return nil, readErr(op, "billing history", err)
	}
	return rows, nil
}

func (s *billingService) Record(ctx context.Context, id string) (*models.BillingRecord, error) {
	const op = "BillingService.Record"

	if err := requireID(op, "billing_history_id", id); err != nil {
		return nil, err
	}
	r, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "billing record", err)
	}
	return r, nil
}

func (s *billingService) AddRecord(ctx context.Context, in *models.BillingRecord) (*models.BillingRecord, error) {
	const op = "BillingService.AddRecord"

	if in == nil || in.InstitutionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "institution_id is required", nil)
	}
	in.ID = ""
	if in.Date.IsZero() {
		in.Date = timeNow()
	}
	if _, err := s.history.Create(ctx, in); err != nil {
		return nil, writeErr(op, "billing record", err)
	}
	return in, nil
}

func (s *billingService) UpdateRecord(ctx context.Context, id string, fields map[string]any) error {
	const op = "BillingService.UpdateRecord"

	if err := requireID(op, "billing_history_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, billingRecordPatch, fields)
	if err != nil {
		return err
	}
	if err := s.history.Update(ctx, id, set); err != nil {
		return writeErr(op, "billing record", err)
	}
	return nil
}

// Total sums the amounts of records dated within [from, to].
func (s *billingService) Total(ctx context.Context, institutionID string, from, to time.Time) (float64, error) {
	const op = "BillingService.Total"

	if to.Before(from) {
		return 0, utils.E(utils.CodeInvalidArgument, op, "end date is before start date", nil)
	}
	rows, err := s.History(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, r := range rows {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		total += r.Amount
	}
	return total, nil
}

var paymentMethodPatch = patchSpec{
	"type":            kindString,
	"last4":           kindString,
	"expiry":          kindString,
	"default_payment": kindBool,
}

var billingRecordPatch = patchSpec{
	"date":        kindTime,
	"description": kindString,
	"amount":      kindFloat,
	"status":      kindString,
}
