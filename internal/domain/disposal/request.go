package disposal

import (
	"time"

	"github.com/google/uuid"
)

// Reason represents why a vehicle is being proposed for disposal
type Reason string

const (
	ReasonEndOfLife            Reason = "end_of_life"
	ReasonExcessiveMaintenance Reason = "excessive_maintenance"
	ReasonAccidentDamage       Reason = "accident_damage"
	ReasonUpgrade              Reason = "upgrade"
	ReasonPolicyChange         Reason = "policy_change"
)

// IsValid returns true if the reason is one of the known values
func (r Reason) IsValid() bool {
	switch r {
	case ReasonEndOfLife, ReasonExcessiveMaintenance, ReasonAccidentDamage, ReasonUpgrade, ReasonPolicyChange:
		return true
	}
	return false
}

// Method represents the recommended disposal channel
type Method string

const (
	MethodAuction   Method = "auction"
	MethodBestOffer Method = "best_offer"
	MethodTradeIn   Method = "trade_in"
	MethodScrap     Method = "scrap"
	MethodDonation  Method = "donation"
)

// IsValid returns true if the method is one of the known values
func (m Method) IsValid() bool {
	switch m {
	case MethodAuction, MethodBestOffer, MethodTradeIn, MethodScrap, MethodDonation:
		return true
	}
	return false
}

// Condition represents the assessed condition of the vehicle
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionSalvage   Condition = "salvage"
)

// IsValid returns true if the condition is one of the known values
func (c Condition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionSalvage:
		return true
	}
	return false
}

// ApprovalStatus represents the approval decision on a request
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Status represents where a request sits in the disposal workflow
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusListed          Status = "listed"
	StatusBiddingOpen     Status = "bidding_open"
	StatusSold            Status = "sold"
	StatusTransferred     Status = "transferred"
	StatusCancelled       Status = "cancelled"
)

// Request represents a formal proposal to remove a vehicle from active
// fleet use. One active request per vehicle is assumed by the workflow;
// the schema does not enforce it.
type Request struct {
	ID              uuid.UUID      `json:"id"`
	VehicleID       uuid.UUID      `json:"vehicle_id"`
	Reason          Reason         `json:"disposal_reason"`
	Method          Method         `json:"recommended_method"`
	Condition       Condition      `json:"condition_rating"`
	CurrentMileage  int64          `json:"current_mileage"`
	EstimatedValue  float64        `json:"estimated_value"`
	RequestedBy     uuid.UUID      `json:"requested_by"`
	RequestDate     time.Time      `json:"request_date"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	ApprovedBy      *uuid.UUID     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectedBy      *uuid.UUID     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsDecided returns true once the request has been approved or rejected
func (r *Request) IsDecided() bool {
	return r.ApprovalStatus != ApprovalPending
}

// Approve records the approval decision and lists the vehicle for disposal
func (r *Request) Approve(approverID uuid.UUID) {
	now := time.Now()
	r.ApprovalStatus = ApprovalApproved
	r.ApprovedBy = &approverID
	r.ApprovedAt = &now
	r.Status = StatusListed
	r.UpdatedAt = now
}

// Reject records the rejection decision; the request is terminally rejected
func (r *Request) Reject(rejecterID uuid.UUID, reason string) {
	now := time.Now()
	r.ApprovalStatus = ApprovalRejected
	r.RejectedBy = &rejecterID
	r.RejectedAt = &now
	r.RejectionReason = reason
	r.UpdatedAt = now
}

// MoveTo bumps the workflow status. Request status progression is driven by
// the orchestrator; the auction lifecycle decides when each bump happens.
func (r *Request) MoveTo(next Status) {
	r.Status = next
	r.UpdatedAt = time.Now()
}
