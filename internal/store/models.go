package store

import "time"

// Pipeline slugs. The two workflows are fixed: deals are sold through the
// commercial pipeline and fulfilled through the delivery pipeline.
const (
	PipelineCommercial = "commercial"
	PipelineDelivery   = "delivery"
)

// Sentinel stage slugs that trigger workflow side effects.
const (
	StageClosedWon             = "closed_won"
	StageClosedLost            = "closed_lost"
	StageCompleted             = "completed"
	StageMeasurementScheduling = "measurement_scheduling"
)

// Opportunity priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Billing statuses for delivery opportunities.
const (
	BillingPending  = "pending"
	BillingInvoiced = "invoiced"
	BillingPaid     = "paid"
)

// PaymentStatusPending is the initial status of a derived payment instruction.
const PaymentStatusPending = "pending"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Pipeline is a named workflow container grouping ordered stages.
type Pipeline struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Stage is a step within a pipeline carrying a win-probability percentage.
type Stage struct {
	ID          string
	PipelineID  string
	Name        string
	Slug        string
	Position    int
	Probability int
	CreatedAt   time.Time
}

// Opportunity is a sales deal tracked through the commercial pipeline.
type Opportunity struct {
	ID                  string
	Title               string
	Description         string
	AmountEstimated     float64
	AmountOffered       float64
	AmountFinal         float64
	StageID             string
	PipelineID          string
	OwnerID             string
	OriginOpportunityID string
	Briefing            string
	MeasurementData     string
	Priority            string
	Source              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ClosedAt            *time.Time
	ProposalSentAt      *time.Time
}

// DeliveryOpportunity is the post-sale fulfillment record derived from a won
// commercial opportunity.
type DeliveryOpportunity struct {
	ID                      string
	CommercialOpportunityID string
	Title                   string
	OwnerID                 string
	AmountFinal             float64
	ExpectedInstallAt       *time.Time
	StageID                 string
	PipelineID              string
	BillingStatus           string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// StageHistoryEntry records when a commercial opportunity entered a stage.
type StageHistoryEntry struct {
	ID            string
	OpportunityID string
	StageID       string
	EnteredAt     time.Time
	ExitedAt      *time.Time
}

// PaymentInstruction captures the three-way split of a completed delivery's
// final amount. At most one exists per delivery opportunity.
type PaymentInstruction struct {
	ID                      string
	CommercialOpportunityID string
	DeliveryOpportunityID   string
	SellerAmount            float64
	SupplierAmount          float64
	InstallerAmount         float64
	TotalAmount             float64
	Status                  string
	CreatedAt               time.Time
}

// Activity is a task tied to an opportunity or delivery opportunity.
type Activity struct {
	ID                    string
	OpportunityID         string
	DeliveryOpportunityID string
	Title                 string
	Description           string
	Type                  string
	DueAt                 time.Time
	DoneAt                *time.Time
	CreatedBy             string
	CreatedAt             time.Time
}

// Proposal is a versioned commercial document attached to an opportunity. The
// uploaded file lives in the blob store under FileKey.
type Proposal struct {
	ID            string
	OpportunityID string
	Version       int
	TotalAmount   float64
	Status        string
	FileKey       string
	FileName      string
	SentAt        *time.Time
	CreatedAt     time.Time
}

// User is an authenticated operator of the CRM.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	InvitedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidPriority reports whether the value is an accepted opportunity priority.
func ValidPriority(value string) bool {
	switch value {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidRole reports whether the value is an accepted user role.
func ValidRole(value string) bool {
	switch value {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}
