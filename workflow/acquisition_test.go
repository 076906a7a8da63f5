package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubPayments struct {
	byID map[primitive.ObjectID]*models.Payment
}

func newStubPayments() *stubPayments {
	return &stubPayments{byID: map[primitive.ObjectID]*models.Payment{}}
}

func (s *stubPayments) Insert(_ context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *stubPayments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubPayments) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *stubPayments) CompleteIfPending(_ context.Context, id primitive.ObjectID, transactionID string) (*models.Payment, error) {
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

func (s *stubPayments) FailIfPending(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
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

func (s *stubPayments) SetPlan(_ context.Context, id, userID primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok || p.UserID != userID {
		return nil, store.ErrNotFound
	}
	p.PaymentPlan = models.PlanInstallment
	p.InstallmentDetails = &details
	cp := *p
	return &cp, nil
}

func (s *stubPayments) UpdateInstallments(_ context.Context, id primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.InstallmentDetails = &details
	cp := *p
	return &cp, nil
}

func (s *stubPayments) FindInstallmentForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	p, err := s.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p.PaymentPlan != models.PlanInstallment {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *stubPayments) ListByUser(ctx context.Context, userID primitive.ObjectID, _ utils.PageQuery) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range s.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubPayments) ListPlansByUser(_ context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.byID {
		if p.UserID == userID && p.PaymentPlan == models.PlanInstallment && p.Status != models.PaymentFailed {
			out = append(out, *p)
		}
	}
	return out, nil
}

type soldCall struct {
	kind  models.PropertyKind
	id    primitive.ObjectID
	owner primitive.ObjectID
}

type stubCatalog struct {
	existing map[primitive.ObjectID]bool
	sold     []soldCall
	soldErr  error
}

func (c *stubCatalog) Resolve(_ context.Context, _ models.PropertyKind, id primitive.ObjectID) error {
	if !c.existing[id] {
		return store.ErrNotFound
	}
	return nil
}

func (c *stubCatalog) MarkSold(_ context.Context, kind models.PropertyKind, id, owner primitive.ObjectID, _ time.Time) error {
	if c.soldErr != nil {
		return c.soldErr
	}
	c.sold = append(c.sold, soldCall{kind: kind, id: id, owner: owner})
	return nil
}

type stubUserSets struct {
	added  map[string][]primitive.ObjectID
	pulled map[string][]primitive.ObjectID
	addErr error
}

func newStubUserSets() *stubUserSets {
	return &stubUserSets{
		added:  map[string][]primitive.ObjectID{},
		pulled: map[string][]primitive.ObjectID{},
	}
}

func (u *stubUserSets) AddToSet(_ context.Context, _ primitive.ObjectID, field string, id primitive.ObjectID) error {
	if u.addErr != nil {
		return u.addErr
	}
	u.added[field] = append(u.added[field], id)
	return nil
}

func (u *stubUserSets) PullFromSet(_ context.Context, _ primitive.ObjectID, field string, id primitive.ObjectID) error {
	u.pulled[field] = append(u.pulled[field], id)
	return nil
}

type decliningGateway struct{}

func (decliningGateway) Authorize(context.Context, *models.Payment) (string, error) {
	return "", errors.New("card declined")
}

func (decliningGateway) Capture(context.Context, string) error { return nil }

func paymentIntent(userID, propertyID primitive.ObjectID, kind models.PropertyKind) *models.Payment {
	return &models.Payment{
		UserID:       userID,
		Amount:       250000,
		Method:       models.MethodBankTransfer,
		PropertyType: kind,
		PropertyID:   propertyID,
		PaymentPlan:  models.PlanFull,
	}
}

func newTestAcquisition(propertyIDs ...primitive.ObjectID) (*Acquisition, *stubPayments, *stubCatalog, *stubUserSets) {
	existing := map[primitive.ObjectID]bool{}
	for _, id := range propertyIDs {
		existing[id] = true
	}
	payments := newStubPayments()
	catalog := &stubCatalog{existing: existing}
	users := newStubUserSets()
	return NewAcquisition(payments, catalog, users, NewSimulatedGateway()), payments, catalog, users
}

func TestProcessFullPaymentTransfersOwnership(t *testing.T) {
	userID := primitive.NewObjectID()
	houseID := primitive.NewObjectID()
	acq, payments, catalog, users := newTestAcquisition(houseID)

	p, err := acq.Process(context.Background(), paymentIntent(userID, houseID, models.KindHouse))
	require.NoError(t, err)
	require.Equal(t, models.PaymentCompleted, p.Status)
	require.NotEmpty(t, p.TransactionID)

	require.Len(t, catalog.sold, 1)
	require.Equal(t, houseID, catalog.sold[0].id)
	require.Equal(t, userID, catalog.sold[0].owner)
	require.Equal(t, []primitive.ObjectID{houseID}, users.added["purchasedHouses"])

	stored, err := payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentCompleted, stored.Status)
}

func TestProcessServicePaymentSkipsOwnershipTransfer(t *testing.T) {
	userID := primitive.NewObjectID()
	serviceID := primitive.NewObjectID()
	acq, _, catalog, users := newTestAcquisition(serviceID)

	p, err := acq.Process(context.Background(), paymentIntent(userID, serviceID, models.KindService))
	require.NoError(t, err)
	require.Equal(t, models.PaymentCompleted, p.Status)

	require.Empty(t, catalog.sold)
	require.Equal(t, []primitive.ObjectID{serviceID}, users.added["subscribedServices"])
}

func TestProcessInstallmentPlanSkipsOwnershipTransfer(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, catalog, users := newTestAcquisition(landID)

	due := time.Now().AddDate(0, 1, 0)
	intent := paymentIntent(userID, landID, models.KindLand)
	intent.PaymentPlan = models.PlanInstallment
	intent.InstallmentDetails = &models.InstallmentDetails{
		TotalInstallments: 12,
		InstallmentsPaid:  1,
		NextPaymentDue:    &due,
	}

	p, err := acq.Process(context.Background(), intent)
	require.NoError(t, err)
	require.Equal(t, models.PaymentCompleted, p.Status)

	require.Empty(t, catalog.sold, "installment plans must not transfer ownership on checkout")
	require.Equal(t, []primitive.ObjectID{landID}, users.added["purchasedLands"])
}

func TestCompleteReplayConflicts(t *testing.T) {
	userID := primitive.NewObjectID()
	houseID := primitive.NewObjectID()
	acq, _, catalog, users := newTestAcquisition(houseID)

	pending, err := acq.Initiate(context.Background(), paymentIntent(userID, houseID, models.KindHouse))
	require.NoError(t, err)
	require.Equal(t, models.PaymentPending, pending.Status)

	_, err = acq.Complete(context.Background(), pending.ID)
	require.NoError(t, err)

	_, err = acq.Complete(context.Background(), pending.ID)
	require.ErrorIs(t, err, store.ErrNotPending)

	// The replay applied nothing twice.
	require.Len(t, catalog.sold, 1)
	require.Len(t, users.added["purchasedHouses"], 1)
}

func TestProcessGatewayDeclineFailsPayment(t *testing.T) {
	userID := primitive.NewObjectID()
	houseID := primitive.NewObjectID()
	payments := newStubPayments()
	catalog := &stubCatalog{existing: map[primitive.ObjectID]bool{houseID: true}}
	users := newStubUserSets()
	acq := NewAcquisition(payments, catalog, users, decliningGateway{})

	_, err := acq.Process(context.Background(), paymentIntent(userID, houseID, models.KindHouse))
	require.ErrorIs(t, err, ErrDeclined)
	require.Contains(t, err.Error(), "card declined")

	require.Empty(t, catalog.sold)
	require.Empty(t, users.added)
	for _, p := range payments.byID {
		require.Equal(t, models.PaymentFailed, p.Status)
	}
}

func TestInitiateRejectsInvalidIntent(t *testing.T) {
	userID := primitive.NewObjectID()
	houseID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(houseID)

	intent := paymentIntent(userID, houseID, models.KindHouse)
	intent.Amount = 0
	_, err := acq.Initiate(context.Background(), intent)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestInitiateRejectsMissingProperty(t *testing.T) {
	userID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition()

	_, err := acq.Initiate(context.Background(), paymentIntent(userID, primitive.NewObjectID(), models.KindHouse))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompleteSurfacesInconsistency(t *testing.T) {
	userID := primitive.NewObjectID()
	houseID := primitive.NewObjectID()
	payments := newStubPayments()
	catalog := &stubCatalog{
		existing: map[primitive.ObjectID]bool{houseID: true},
		soldErr:  errors.New("collection unavailable"),
	}
	users := newStubUserSets()
	acq := NewAcquisition(payments, catalog, users, NewSimulatedGateway())

	pending, err := acq.Initiate(context.Background(), paymentIntent(userID, houseID, models.KindHouse))
	require.NoError(t, err)

	p, err := acq.Complete(context.Background(), pending.ID)
	require.ErrorIs(t, err, ErrInconsistent)
	require.Equal(t, models.PaymentCompleted, p.Status, "the payment record stays completed")
}

func TestConvertToPlan(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(landID)

	pending, err := acq.Initiate(context.Background(), paymentIntent(userID, landID, models.KindLand))
	require.NoError(t, err)

	due := time.Now().AddDate(0, 1, 0)
	p, err := acq.ConvertToPlan(context.Background(), pending.ID, userID, 6, due)
	require.NoError(t, err)
	require.Equal(t, models.PlanInstallment, p.PaymentPlan)
	require.Equal(t, 6, p.InstallmentDetails.TotalInstallments)
	require.Equal(t, 1, p.InstallmentDetails.InstallmentsPaid)
	require.NotNil(t, p.InstallmentDetails.NextPaymentDue)
}

func TestConvertToPlanSingleInstallmentClearsDueDate(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(landID)

	pending, err := acq.Initiate(context.Background(), paymentIntent(userID, landID, models.KindLand))
	require.NoError(t, err)

	p, err := acq.ConvertToPlan(context.Background(), pending.ID, userID, 1, time.Now())
	require.NoError(t, err)
	require.True(t, p.InstallmentDetails.Fulfilled())
	require.Nil(t, p.InstallmentDetails.NextPaymentDue)
}

func installmentPlan(t *testing.T, acq *Acquisition, userID, propertyID primitive.ObjectID, total int) *models.Payment {
	t.Helper()
	due := time.Now().AddDate(0, 1, 0)
	intent := paymentIntent(userID, propertyID, models.KindLand)
	intent.PaymentPlan = models.PlanInstallment
	intent.InstallmentDetails = &models.InstallmentDetails{
		TotalInstallments: total,
		InstallmentsPaid:  1,
		NextPaymentDue:    &due,
	}
	p, err := acq.Initiate(context.Background(), intent)
	require.NoError(t, err)
	return p
}

func TestMarkInstallmentAdvancesAndReschedules(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(landID)

	plan := installmentPlan(t, acq, userID, landID, 4)
	before := *plan.InstallmentDetails.NextPaymentDue

	p, err := acq.MarkInstallment(context.Background(), plan.ID, userID, 1, nil)
	require.NoError(t, err)
	require.Equal(t, 2, p.InstallmentDetails.InstallmentsPaid)
	require.NotNil(t, p.InstallmentDetails.NextPaymentDue)
	require.True(t, p.InstallmentDetails.NextPaymentDue.After(before))
}

func TestMarkInstallmentFulfilmentClearsDueDateWithoutOwnership(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, catalog, _ := newTestAcquisition(landID)

	plan := installmentPlan(t, acq, userID, landID, 3)

	p, err := acq.MarkInstallment(context.Background(), plan.ID, userID, 5, nil)
	require.NoError(t, err)
	require.Equal(t, 3, p.InstallmentDetails.InstallmentsPaid, "paid count is capped at the total")
	require.Nil(t, p.InstallmentDetails.NextPaymentDue)
	require.Empty(t, catalog.sold, "fulfilment alone does not transfer ownership")
}

func TestMarkInstallmentRejectsBadDelta(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(landID)

	plan := installmentPlan(t, acq, userID, landID, 4)

	_, err := acq.MarkInstallment(context.Background(), plan.ID, userID, 0, nil)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestMarkInstallmentMissingDetails(t *testing.T) {
	userID := primitive.NewObjectID()
	acq, payments, _, _ := newTestAcquisition()

	// A plan record without its details, as a partial admin edit could
	// leave behind.
	broken := &models.Payment{
		UserID:      userID,
		Amount:      250000,
		Status:      models.PaymentPending,
		PaymentPlan: models.PlanInstallment,
	}
	require.NoError(t, payments.Insert(context.Background(), broken))

	_, err := acq.MarkInstallment(context.Background(), broken.ID, userID, 1, nil)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestMarkInstallmentScopedToOwner(t *testing.T) {
	userID := primitive.NewObjectID()
	landID := primitive.NewObjectID()
	acq, _, _, _ := newTestAcquisition(landID)

	plan := installmentPlan(t, acq, userID, landID, 4)

	_, err := acq.MarkInstallment(context.Background(), plan.ID, primitive.NewObjectID(), 1, nil)
	require.ErrorIs(t, err, store.ErrNotFound)
}
