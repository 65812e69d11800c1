package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Pipeline describes a workflow container and its ordered stages.
type Pipeline struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Stages []Stage `json:"stages"`
}

// Stage describes one pipeline step.
type Stage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Position    int    `json:"position"`
	Probability int    `json:"probability"`
}

// Opportunity describes a commercial deal in a transport-friendly format.
type Opportunity struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	AmountEstimated     float64 `json:"amountEstimated"`
	AmountOffered       float64 `json:"amountOffered"`
	AmountFinal         float64 `json:"amountFinal"`
	StageID             string  `json:"stageId"`
	PipelineID          string  `json:"pipelineId"`
	OwnerID             string  `json:"ownerId,omitempty"`
	OriginOpportunityID string  `json:"originOpportunityId,omitempty"`
	Briefing            string  `json:"briefing,omitempty"`
	MeasurementData     string  `json:"measurementData,omitempty"`
	Priority            string  `json:"priority"`
	Source              string  `json:"source,omitempty"`
	CreatedAt           string  `json:"createdAt,omitempty"`
	UpdatedAt           string  `json:"updatedAt,omitempty"`
	ClosedAt            string  `json:"closedAt,omitempty"`
	ProposalSentAt      string  `json:"proposalSentAt,omitempty"`
}

// DeliveryOpportunity describes a fulfillment record.
type DeliveryOpportunity struct {
	ID                      string  `json:"id"`
	CommercialOpportunityID string  `json:"commercialOpportunityId"`
	Title                   string  `json:"title"`
	OwnerID                 string  `json:"ownerId,omitempty"`
	AmountFinal             float64 `json:"amountFinal"`
	ExpectedInstallAt       string  `json:"expectedInstallAt,omitempty"`
	StageID                 string  `json:"stageId"`
	PipelineID              string  `json:"pipelineId"`
	BillingStatus           string  `json:"billingStatus"`
	CreatedAt               string  `json:"createdAt,omitempty"`
	UpdatedAt               string  `json:"updatedAt,omitempty"`
}

// StageHistoryEntry describes one stop in an opportunity's stage history.
type StageHistoryEntry struct {
	ID        string `json:"id"`
	StageID   string `json:"stageId"`
	EnteredAt string `json:"enteredAt"`
	ExitedAt  string `json:"exitedAt,omitempty"`
}

// PaymentInstruction describes a derived payment split.
type PaymentInstruction struct {
	ID                      string  `json:"id"`
	CommercialOpportunityID string  `json:"commercialOpportunityId,omitempty"`
	DeliveryOpportunityID   string  `json:"deliveryOpportunityId"`
	SellerAmount            float64 `json:"sellerAmount"`
	SupplierAmount          float64 `json:"supplierAmount"`
	InstallerAmount         float64 `json:"installerAmount"`
	TotalAmount             float64 `json:"totalAmount"`
	Status                  string  `json:"status"`
	CreatedAt               string  `json:"createdAt,omitempty"`
}

// Activity describes a task attached to a deal or delivery.
type Activity struct {
	ID                    string `json:"id"`
	OpportunityID         string `json:"opportunityId,omitempty"`
	DeliveryOpportunityID string `json:"deliveryOpportunityId,omitempty"`
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	Type                  string `json:"type"`
	DueAt                 string `json:"dueAt"`
	DoneAt                string `json:"doneAt,omitempty"`
	CreatedBy             string `json:"createdBy,omitempty"`
	CreatedAt             string `json:"createdAt,omitempty"`
}

// Proposal describes a versioned proposal document.
type Proposal struct {
	ID            string  `json:"id"`
	OpportunityID string  `json:"opportunityId"`
	Version       int     `json:"version"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
	FileName      string  `json:"fileName,omitempty"`
	SentAt        string  `json:"sentAt,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

// User describes an operator account. Password hashes never leave the server.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	InvitedAt string `json:"invitedAt,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ForecastLine is one aggregated report row.
type ForecastLine struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ReportSummary aggregates the commercial pipeline forecast.
type ReportSummary struct {
	ByStage       []ForecastLine `json:"byStage"`
	ByOwner       []ForecastLine `json:"byOwner"`
	TotalForecast float64        `json:"totalForecast"`
	ActiveDeals   int            `json:"activeDeals"`
}

// MoveResult reports a stage transition and anything it derived.
type MoveResult struct {
	Opportunity *Opportunity         `json:"opportunity,omitempty"`
	Delivery    *DeliveryOpportunity `json:"delivery,omitempty"`
	Stage       Stage                `json:"stage"`

	DerivedDelivery *DeliveryOpportunity `json:"derivedDelivery,omitempty"`
	DeliveryCreated bool                 `json:"deliveryCreated"`
	DerivedPayment  *PaymentInstruction  `json:"derivedPayment,omitempty"`
	PaymentCreated  bool                 `json:"paymentCreated"`
}

// CreateOpportunityRequest carries fields for a new deal.
type CreateOpportunityRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	AmountEstimated float64 `json:"amountEstimated"`
	Priority        string  `json:"priority"`
	Source          string  `json:"source"`
	OwnerID         string  `json:"ownerId"`
}

// UpdateOpportunityRequest carries partial edits. Nil fields are untouched.
type UpdateOpportunityRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	AmountEstimated *float64 `json:"amountEstimated"`
	AmountOffered   *float64 `json:"amountOffered"`
	AmountFinal     *float64 `json:"amountFinal"`
	Priority        *string  `json:"priority"`
	Source          *string  `json:"source"`
	OwnerID         *string  `json:"ownerId"`
	Briefing        *string  `json:"briefing"`
	MeasurementData *string  `json:"measurementData"`
}

// MoveRequest names the target stage of a transition.
type MoveRequest struct {
	StageID  string `json:"stageId"`
	Pipeline string `json:"pipeline"`
}

// CreateActivityRequest carries fields for a new activity.
type CreateActivityRequest struct {
	OpportunityID         string `json:"opportunityId"`
	DeliveryOpportunityID string `json:"deliveryOpportunityId"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Type                  string `json:"type"`
	DueAt                 string `json:"dueAt"`
}

// InviteRequest asks for a new user invite.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AcceptInviteRequest redeems an invite token.
type AcceptInviteRequest struct {
	Token    string `json:"token"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
