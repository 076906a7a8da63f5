package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/estatehub/backend/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentRequest struct {
	UserID             string                     `json:"userId,omitempty"`
	PropertyID         string                     `json:"propertyId"`
	PropertyType       models.PropertyKind        `json:"propertyType"`
	Amount             float64                    `json:"amount"`
	Method             models.PaymentMethod       `json:"method"`
	PaymentPlan        models.PaymentPlan         `json:"paymentPlan"`
	InstallmentDetails *models.InstallmentDetails `json:"installmentDetails,omitempty"`
}

func (req *paymentRequest) toPayment(userID primitive.ObjectID) (*models.Payment, error) {
	propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return nil, errors.New("invalid property ID")
	}
	return &models.Payment{
		UserID:             userID,
		PropertyID:         propertyID,
		PropertyType:       req.PropertyType,
		Amount:             req.Amount,
		Method:             req.Method,
		PaymentPlan:        req.PaymentPlan,
		InstallmentDetails: req.InstallmentDetails,
	}, nil
}

// ProcessPayment is the checkout endpoint: the caller's payment intent is
// validated, run through the gateway and completed.
func ProcessPayment(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		payment, err := req.toPayment(user.ID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		completed, err := acq.Process(r.Context(), payment)
		if err != nil {
			respondAcquisitionError(w, err, "Error processing payment")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Payment processed successfully",
			Data:    completed,
		})
	}
}

// AddPayment records a payment on behalf of a user without running the
// gateway; it stays Pending until the explicit completion step.
func AddPayment(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		userID, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		payment, err := req.toPayment(userID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := acq.Initiate(r.Context(), payment)
		if err != nil {
			respondAcquisitionError(w, err, "Error adding payment")
			return
		}
		utils.RespondJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Payment added successfully",
			Data:    created,
		})
	}
}

// MarkPaymentCompleted finalizes a pending payment. Replaying it returns
// 409 instead of re-applying the ownership side effects.
func MarkPaymentCompleted(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := parseObjectID(r, "paymentId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := acq.Complete(r.Context(), paymentID)
		if err != nil {
			respondAcquisitionError(w, err, "Error marking payment as completed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Payment marked as completed successfully",
			Data:    payment,
		})
	}
}

func GetPaymentHistory(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		q := utils.ParsePageQuery(r)
		payments, total, err := acq.History(r.Context(), user.ID, q)
		if err != nil {
			log.Printf("Error fetching payment history for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching payment history")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       payments,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		})
	}
}

func GetPaymentDetails(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		paymentID, err := parseObjectID(r, "paymentId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := acq.Details(r.Context(), paymentID, user.ID, user.Role == models.RoleAdmin)
		if err != nil {
			respondAcquisitionError(w, err, "Error fetching payment details")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: payment})
	}
}

func GetAllPayments(payments *store.PaymentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := utils.ParsePageQuery(r)
		list, total, err := payments.ListAll(r.Context(), q)
		if err != nil {
			log.Printf("Error fetching all payments: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching all payments")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       list,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		})
	}
}

func GetPaymentPlan(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		plans, err := acq.Plans(r.Context(), user.ID)
		if err != nil {
			log.Printf("Error fetching payment plans for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching payment plans")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: plans})
	}
}

type updatePlanRequest struct {
	PaymentID         string    `json:"paymentId"`
	TotalInstallments int       `json:"totalInstallments"`
	NextPaymentDue    time.Time `json:"nextPaymentDue"`
}

// UpdatePaymentPlan converts a user's payment into an installment plan.
func UpdatePaymentPlan(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseObjectID(r, "userId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var req updatePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		paymentID, err := primitive.ObjectIDFromHex(req.PaymentID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := acq.ConvertToPlan(r.Context(), paymentID, userID, req.TotalInstallments, req.NextPaymentDue)
		if err != nil {
			respondAcquisitionError(w, err, "Error updating payment plan")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Payment plan updated successfully",
			Data:    payment,
		})
	}
}

func GetInstallmentDetails(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		paymentID, err := parseObjectID(r, "paymentId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := acq.Installment(r.Context(), paymentID, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Installment payment not found")
				return
			}
			log.Printf("Error fetching installment details for %s: %v", paymentID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching installment details")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: payment})
	}
}

type payInstallmentRequest struct {
	Installments   int        `json:"installments"`
	NextPaymentDue *time.Time `json:"nextPaymentDue,omitempty"`
}

// PayInstallment advances the caller's installment plan.
func PayInstallment(acq *workflow.Acquisition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		paymentID, err := parseObjectID(r, "paymentId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		req := payInstallmentRequest{Installments: 1}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
				return
			}
		}

		payment, err := acq.MarkInstallment(r.Context(), paymentID, user.ID, req.Installments, req.NextPaymentDue)
		if err != nil {
			respondAcquisitionError(w, err, "Error recording installment")
			return
		}

		message := "Installment recorded successfully"
		if payment.InstallmentDetails.Fulfilled() {
			message = "Installment plan fulfilled; awaiting final completion"
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: message,
			Data:    payment,
		})
	}
}

// respondAcquisitionError maps workflow errors onto the taxonomy. Unknown
// errors are logged and returned as opaque 500s.
func respondAcquisitionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "Payment or property not found")
	case errors.Is(err, store.ErrNotPending):
		utils.RespondError(w, http.StatusConflict, "Payment has already been processed")
	case errors.Is(err, workflow.ErrDeclined):
		utils.RespondError(w, http.StatusPaymentRequired, "Payment declined")
	case errors.Is(err, workflow.ErrInconsistent):
		log.Printf("Acquisition inconsistency: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Payment completed but finalization failed; contact support")
	case isValidationError(err):
		utils.RespondValidationError(w, fallback, err)
	default:
		log.Printf("%s: %v", fallback, err)
		utils.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

// isValidationError distinguishes input defects, which are safe to echo,
// from storage failures, which are not.
func isValidationError(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}
