package handler

import (
	"errors"
	"net/http"
	"onboarding-service/internal/dto"
	"onboarding-service/internal/model"
	"onboarding-service/internal/onboarding"
	"onboarding-service/internal/phone"
	"onboarding-service/internal/repository"
	"onboarding-service/internal/service"

	"github.com/labstack/echo/v4"
)

type OnboardingHandler struct {
	onboardingService service.OnboardingService
	botURL            string
}

func NewOnboardingHandler(onboardingService service.OnboardingService, botURL string) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		botURL:            botURL,
	}
}

// Resolve waits for the payment-confirmed buyer record addressed by the
// email query parameter and opens an onboarding session for it.
func (h *OnboardingHandler) Resolve(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := h.onboardingService.StartOnboarding(ctx, c.QueryParam("email"))
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(http.StatusOK, h.sessionResponse(sess))
}

func (h *OnboardingHandler) GetSession(c echo.Context) error {
	sess, err := h.onboardingService.Session(c.Param("sessionID"))
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(http.StatusOK, h.sessionResponse(sess))
}

func (h *OnboardingHandler) RegisterDependent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	sess, err := h.onboardingService.RegisterDependent(ctx, c.Param("sessionID"), c.Param("slotID"), req.Phone)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(http.StatusOK, h.sessionResponse(sess))
}

func (h *OnboardingHandler) sessionResponse(sess *onboarding.Session) dto.OnboardingResponse {
	buyer := sess.Buyer()

	dependents := []dto.DependentView{}
	for _, dep := range sess.Dependents() {
		dependents = append(dependents, dto.DependentView{
			ID:           dep.ID,
			Phone:        dep.Phone,
			PhoneDisplay: phone.FormatDisplay(dep.Phone),
		})
	}

	slots := []dto.SlotView{}
	for _, slot := range sess.Slots() {
		slots = append(slots, dto.SlotView{
			ID:            slot.ID,
			Submitting:    slot.Submitting,
			JustSucceeded: slot.JustSucceeded,
		})
	}

	return dto.OnboardingResponse{
		SessionID: sess.ID,
		Buyer: dto.BuyerView{
			ID:                 buyer.ID,
			Email:              buyer.Email,
			PlanType:           buyer.PlanType,
			PlanLabel:          model.PlanLabel(buyer.PlanType),
			SubscriptionStatus: buyer.SubscriptionStatus,
			MaxDependents:      buyer.SeatCount(),
		},
		Dependents:     dependents,
		Slots:          slots,
		SlotsRemaining: sess.SlotsRemaining(),
		BotURL:         h.botURL,
	}
}

// renderError maps the flow's error taxonomy to status codes; every body
// carries user-facing guidance plus the support deep link.
func (h *OnboardingHandler) renderError(c echo.Context, err error) error {
	var status int
	var message string

	switch {
	case errors.Is(err, onboarding.ErrMissingEmail):
		status = http.StatusBadRequest
		message = "The access link is incomplete. Use the link sent after your purchase."
	case errors.Is(err, onboarding.ErrProvisioningTimeout), errors.Is(err, repository.ErrBuyerNotFound):
		status = http.StatusNotFound
		message = "Your payment may still be processing. Wait a few minutes and try again, or contact support."
	case errors.Is(err, phone.ErrEmpty), errors.Is(err, phone.ErrLength):
		status = http.StatusUnprocessableEntity
		message = "Invalid number. Use the international format 5511999999999 (country code + area code + number)."
	case errors.Is(err, onboarding.ErrNoCapacity):
		status = http.StatusConflict
		message = "All seats on your plan are already filled."
	case errors.Is(err, onboarding.ErrSlotBusy):
		status = http.StatusConflict
		message = "This number is already being registered. Wait a moment."
	case errors.Is(err, onboarding.ErrNoSuchSlot),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, onboarding.ErrSessionClosed):
		status = http.StatusNotFound
		message = "This onboarding session has expired. Reload the page to continue."
	case errors.Is(err, onboarding.ErrConnectivity):
		status = http.StatusServiceUnavailable
		message = "Connection failed. Check your internet and try again."
	case errors.Is(err, onboarding.ErrStoreRejected), errors.Is(err, repository.ErrAmbiguousBuyer):
		status = http.StatusBadGateway
		message = "Could not register the number. Try again."
	default:
		status = http.StatusInternalServerError
		message = "Something went wrong. Try again or contact support."
	}

	return c.JSON(status, dto.ErrorResponse{
		Message:    message,
		SupportURL: h.botURL,
	})
}
