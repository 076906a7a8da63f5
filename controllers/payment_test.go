package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/estatehub/backend/workflow"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memPayments struct {
	byID map[primitive.ObjectID]*models.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: map[primitive.ObjectID]*models.Payment{}}
}

func (s *memPayments) Insert(_ context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *memPayments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memPayments) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil || p.UserID != userID {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *memPayments) CompleteIfPending(_ context.Context, id primitive.ObjectID, transactionID string) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return nil, store.ErrNotPending
	}
	p.Status = models.PaymentCompleted
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	cp := *p
	return &cp, nil
}

func (s *memPayments) FailIfPending(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != models.PaymentPending {
		return nil, store.ErrNotPending
	}
	p.Status = models.PaymentFailed
	cp := *p
	return &cp, nil
}

func (s *memPayments) SetPlan(_ context.Context, id, userID primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok || p.UserID != userID {
		return nil, store.ErrNotFound
	}
	p.PaymentPlan = models.PlanInstallment
	p.InstallmentDetails = &details
	cp := *p
	return &cp, nil
}

func (s *memPayments) UpdateInstallments(_ context.Context, id primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.InstallmentDetails = &details
	cp := *p
	return &cp, nil
}

func (s *memPayments) FindInstallmentForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	p, err := s.FindByIDForUser(ctx, id, userID)
	if err != nil || p.PaymentPlan != models.PlanInstallment {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *memPayments) ListByUser(_ context.Context, userID primitive.ObjectID, _ utils.PageQuery) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range s.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memPayments) ListPlansByUser(_ context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.byID {
		if p.UserID == userID && p.PaymentPlan == models.PlanInstallment {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCatalog struct {
	existing map[primitive.ObjectID]bool
}

func (c *memCatalog) Resolve(_ context.Context, _ models.PropertyKind, id primitive.ObjectID) error {
	if !c.existing[id] {
		return store.ErrNotFound
	}
	return nil
}

func (c *memCatalog) MarkSold(context.Context, models.PropertyKind, primitive.ObjectID, primitive.ObjectID, time.Time) error {
	return nil
}

type memUserSets struct{}

func (memUserSets) AddToSet(context.Context, primitive.ObjectID, string, primitive.ObjectID) error {
	return nil
}

func (memUserSets) PullFromSet(context.Context, primitive.ObjectID, string, primitive.ObjectID) error {
	return nil
}

func testAcquisition(propertyIDs ...primitive.ObjectID) (*workflow.Acquisition, *memPayments) {
	existing := map[primitive.ObjectID]bool{}
	for _, id := range propertyIDs {
		existing[id] = true
	}
	payments := newMemPayments()
	acq := workflow.NewAcquisition(payments, &memCatalog{existing: existing}, memUserSets{}, workflow.NewSimulatedGateway())
	return acq, payments
}

func authedRequest(method, target string, body []byte, user *models.User, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserKey, user))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestProcessPayment(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	houseID := primitive.NewObjectID()
	acq, payments := testAcquisition(houseID)
	handler := ProcessPayment(acq)

	body := fmt.Sprintf(`{"propertyId":%q,"propertyType":"House","amount":500000,"method":"Credit Card","paymentPlan":"Full Payment"}`, houseID.Hex())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/payments/process", []byte(body), user, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	require.Len(t, payments.byID, 1)
	for _, p := range payments.byID {
		require.Equal(t, models.PaymentCompleted, p.Status)
		require.NotEmpty(t, p.TransactionID)
	}
}

func TestProcessPaymentMissingProperty(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	acq, _ := testAcquisition()
	handler := ProcessPayment(acq)

	body := fmt.Sprintf(`{"propertyId":%q,"propertyType":"House","amount":500000,"method":"Cash"}`, primitive.NewObjectID().Hex())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/payments/process", []byte(body), user, nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, false, env["success"])
	require.Equal(t, "Payment or property not found", env["message"])
}

type refusingGateway struct{}

func (refusingGateway) Authorize(context.Context, *models.Payment) (string, error) {
	return "", fmt.Errorf("insufficient funds")
}

func (refusingGateway) Capture(context.Context, string) error { return nil }

func TestProcessPaymentDeclined(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	houseID := primitive.NewObjectID()
	payments := newMemPayments()
	acq := workflow.NewAcquisition(payments, &memCatalog{existing: map[primitive.ObjectID]bool{houseID: true}}, memUserSets{}, refusingGateway{})
	handler := ProcessPayment(acq)

	body := fmt.Sprintf(`{"propertyId":%q,"propertyType":"House","amount":500000,"method":"Credit Card","paymentPlan":"Full Payment"}`, houseID.Hex())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/payments/process", []byte(body), user, nil))

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, false, env["success"])
	require.Equal(t, "Payment declined", env["message"])
	for _, p := range payments.byID {
		require.Equal(t, models.PaymentFailed, p.Status)
	}
}

func TestProcessPaymentValidation(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	houseID := primitive.NewObjectID()
	acq, _ := testAcquisition(houseID)
	handler := ProcessPayment(acq)

	body := fmt.Sprintf(`{"propertyId":%q,"propertyType":"House","amount":0,"method":"Cash"}`, houseID.Hex())

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/payments/process", []byte(body), user, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Contains(t, env["error"], "amount")
}

func TestMarkPaymentCompletedReplay(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	landID := primitive.NewObjectID()
	acq, _ := testAcquisition(landID)

	pending, err := acq.Initiate(context.Background(), &models.Payment{
		UserID:       user.ID,
		Amount:       2000000,
		Method:       models.MethodBankTransfer,
		PropertyType: models.KindLand,
		PropertyID:   landID,
		PaymentPlan:  models.PlanFull,
	})
	require.NoError(t, err)

	handler := MarkPaymentCompleted(acq)
	vars := map[string]string{"paymentId": pending.ID.Hex()}

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPatch, "/api/payments/"+pending.ID.Hex()+"/complete", nil, user, vars))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPatch, "/api/payments/"+pending.ID.Hex()+"/complete", nil, user, vars))
	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "Payment has already been processed", env["message"])
}

func TestPayInstallmentFulfilment(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	landID := primitive.NewObjectID()
	acq, _ := testAcquisition(landID)

	due := time.Now().AddDate(0, 1, 0)
	plan, err := acq.Initiate(context.Background(), &models.Payment{
		UserID:       user.ID,
		Amount:       2000000,
		Method:       models.MethodBankTransfer,
		PropertyType: models.KindLand,
		PropertyID:   landID,
		PaymentPlan:  models.PlanInstallment,
		InstallmentDetails: &models.InstallmentDetails{
			TotalInstallments: 2,
			InstallmentsPaid:  1,
			NextPaymentDue:    &due,
		},
	})
	require.NoError(t, err)

	handler := PayInstallment(acq)
	vars := map[string]string{"paymentId": plan.ID.Hex()}

	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/payments/installments/"+plan.ID.Hex()+"/pay", nil, user, vars))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "Installment plan fulfilled; awaiting final completion", env["message"])
}
