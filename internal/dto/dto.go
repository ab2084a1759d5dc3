package dto

type BuyerView struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	PlanType           string `json:"plan_type"`
	PlanLabel          string `json:"plan_label"`
	SubscriptionStatus string `json:"subscription_status"`
	MaxDependents      int    `json:"max_dependents"`
}

type DependentView struct {
	ID           string `json:"id"`
	Phone        string `json:"phone"`
	PhoneDisplay string `json:"phone_display"`
}

type SlotView struct {
	ID            string `json:"id"`
	Submitting    bool   `json:"submitting"`
	JustSucceeded bool   `json:"just_succeeded"`
}

type OnboardingResponse struct {
	SessionID      string          `json:"session_id"`
	Buyer          BuyerView       `json:"buyer"`
	Dependents     []DependentView `json:"dependents"`
	Slots          []SlotView      `json:"slots"`
	SlotsRemaining int             `json:"slots_remaining"`
	BotURL         string          `json:"bot_url"`
}

type RegisterRequest struct {
	Phone string `json:"phone"`
}

type ErrorResponse struct {
	Message    string `json:"message"`
	SupportURL string `json:"support_url"`
}
