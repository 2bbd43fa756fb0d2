package models

import "time"

const (
	ComplaintPriceViolation = "price_violation"
	ComplaintServiceIssue   = "service_issue"
	ComplaintProductQuality = "product_quality"
	ComplaintOther          = "other"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	EvidenceImage    = "image"
	EvidenceDocument = "document"
	EvidenceReceipt  = "receipt"
	EvidenceInvoice  = "invoice"
	EvidenceOther    = "other"
)

const (
	NotifyStatusChange    = "status_change"
	NotifyAssignment      = "assignment"
	NotifyResolution      = "resolution"
	NotifyEvidenceRequest = "evidence_request"
	NotifyFollowUp        = "follow_up"
)

func ValidComplaintType(t string) bool {
	switch t {
	case ComplaintPriceViolation, ComplaintServiceIssue, ComplaintProductQuality, ComplaintOther:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidEvidenceType(t string) bool {
	switch t {
	case EvidenceImage, EvidenceDocument, EvidenceReceipt, EvidenceInvoice, EvidenceOther:
		return true
	}
	return false
}

type Complaint struct {
	ID                        int64                    `json:"id"`
	Title                     string                   `json:"title"`
	Description               string                   `json:"description"`
	ComplaintType             string                   `json:"complaint_type"`
	Status                    string                   `json:"status"`
	Priority                  string                   `json:"priority"`
	ComplainantID             int64                    `json:"complainant"`
	ComplainantName           string                   `json:"complainant_name"`
	ComplainantEmail          string                   `json:"complainant_email"`
	ReportedRetailerID        *int64                   `json:"reported_retailer"`
	ReportedRetailerName      string                   `json:"reported_retailer_name,omitempty"`
	SKUID                     *int64                   `json:"sku"`
	SKUName                   string                   `json:"sku_name,omitempty"`
	DistrictID                int64                    `json:"district"`
	DistrictName              string                   `json:"district_name"`
	ReportedPrice             *Money                   `json:"reported_price"`
	ReferencePrice            *Money                   `json:"reference_price"`
	PriceDifference           *Money                   `json:"price_difference"`
	PriceDifferencePercentage *float64                 `json:"price_difference_percentage"`
	IncidentLocation          string                   `json:"incident_location"`
	IncidentDate              *time.Time               `json:"incident_date"`
	WitnessDetails            string                   `json:"witness_details"`
	ContactNumber             string                   `json:"contact_number"`
	AssignedToID              *int64                   `json:"assigned_to"`
	AssignedToName            string                   `json:"assigned_to_name,omitempty"`
	InvestigationNotes        string                   `json:"investigation_notes"`
	ResolutionAction          string                   `json:"resolution_action"`
	ResolutionReport          string                   `json:"resolution_report"`
	ResolutionNotes           string                   `json:"resolution_notes"`
	ResolvedAt                *time.Time               `json:"resolved_at"`
	ClosedAt                  *time.Time               `json:"closed_at"`
	CreatedAt                 time.Time                `json:"created_at"`
	UpdatedAt                 *time.Time               `json:"updated_at,omitempty"`
	Evidence                  []ComplaintEvidence      `json:"evidence,omitempty"`
	StatusHistory             []ComplaintStatusHistory `json:"status_history,omitempty"`
	Notifications             []ComplaintNotification  `json:"notifications,omitempty"`
}

type ComplaintInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ComplaintType      string     `json:"complaint_type"`
	Priority           string     `json:"priority"`
	ReportedRetailerID *int64     `json:"reported_retailer"`
	SKUID              *int64     `json:"sku"`
	DistrictID         int64      `json:"district"`
	ReportedPrice      *Money     `json:"reported_price"`
	IncidentLocation   string     `json:"incident_location"`
	IncidentDate       *time.Time `json:"incident_date"`
	WitnessDetails     string     `json:"witness_details"`
	ContactNumber      string     `json:"contact_number"`
}

type ComplaintFilter struct {
	ComplainantID *int64
	AssignedToID  *int64
	Status        string
	Priority      string
	ComplaintType string
	DistrictID    *int64
	SKUID         *int64
	Search        string
	Page          Page
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type ResolveRequest struct {
	ResolutionAction string `json:"resolution_action"`
	ResolutionReport string `json:"resolution_report"`
	ResolutionNotes  string `json:"resolution_notes"`
}

type AssignRequest struct {
	AssignedTo int64 `json:"assigned_to"`
}

type ComplaintEvidence struct {
	ID           int64     `json:"id"`
	ComplaintID  int64     `json:"complaint"`
	FileType     string    `json:"file_type"`
	FileURL      string    `json:"file_url"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	Description  string    `json:"description"`
	UploadedByID int64     `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type ComplaintStatusHistory struct {
	ID            int64     `json:"id"`
	ComplaintID   int64     `json:"complaint"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedByID   int64     `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	Notes         string    `json:"notes"`
	ChangedAt     time.Time `json:"changed_at"`
}

type ComplaintNotification struct {
	ID               int64      `json:"id"`
	ComplaintID      int64      `json:"complaint"`
	RecipientID      int64      `json:"recipient"`
	NotificationType string     `json:"notification_type"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	SentViaPush      bool       `json:"sent_via_push"`
	SentAt           time.Time  `json:"sent_at"`
	ReadAt           *time.Time `json:"read_at"`
}

type ComplaintStatistics struct {
	TotalComplaints    int `json:"total_complaints"`
	PendingComplaints  int `json:"pending_complaints"`
	UnderReview        int `json:"under_review"`
	ResolvedComplaints int `json:"resolved_complaints"`
	PriceViolations    int `json:"price_violations"`
}
