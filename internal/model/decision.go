package model

import "slices"

// DecisionKind identifies the variant of a Decision
type DecisionKind string

const (
	DecisionInsurancePurchase DecisionKind = "insurance_purchase"
	DecisionEventAck          DecisionKind = "event_ack"
	DecisionRentDue           DecisionKind = "rent_due"
	DecisionSalaryCredit      DecisionKind = "salary_credit"
	DecisionNotice            DecisionKind = "notice"
)

// Outcome is the answer a human gives to a Decision
type Outcome string

const (
	OutcomeBuy     Outcome = "buy"
	OutcomeDecline Outcome = "decline"
	OutcomeNext    Outcome = "next"
)

// Decision is a request for human input that suspends play until answered.
// The set of variants is closed; see the Decision* kinds.
type Decision interface {
	Kind() DecisionKind
	// Outcomes lists the answers this decision accepts
	Outcomes() []Outcome
	decision()
}

// InsurancePurchase offers the player an insurance of the given kind
type InsurancePurchase struct {
	Player    Player
	Insurance InsuranceKind
	Price     int
}

// EventAck shows a drawn event; it is applied once acknowledged
type EventAck struct {
	Event  Event
	Player Player
}

// RentDue tells the player the rent is about to be charged
type RentDue struct {
	Player Player
}

// SalaryCredit tells the player the salary is about to be paid
type SalaryCredit struct {
	Player Player
}

// Severity of a Notice
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notice is an acknowledgment-only message, e.g. "insufficient funds"
type Notice struct {
	Message  string
	Severity Severity
}

var (
	buyOrDecline = []Outcome{OutcomeBuy, OutcomeDecline}
	nextOnly     = []Outcome{OutcomeNext}
)

func (InsurancePurchase) Kind() DecisionKind  { return DecisionInsurancePurchase }
func (InsurancePurchase) Outcomes() []Outcome { return slices.Clone(buyOrDecline) }
func (InsurancePurchase) decision()           {}

func (EventAck) Kind() DecisionKind  { return DecisionEventAck }
func (EventAck) Outcomes() []Outcome { return slices.Clone(nextOnly) }
func (EventAck) decision()           {}

func (RentDue) Kind() DecisionKind  { return DecisionRentDue }
func (RentDue) Outcomes() []Outcome { return slices.Clone(nextOnly) }
func (RentDue) decision()           {}

func (SalaryCredit) Kind() DecisionKind  { return DecisionSalaryCredit }
func (SalaryCredit) Outcomes() []Outcome { return slices.Clone(nextOnly) }
func (SalaryCredit) decision()           {}

func (Notice) Kind() DecisionKind  { return DecisionNotice }
func (Notice) Outcomes() []Outcome { return slices.Clone(nextOnly) }
func (Notice) decision()           {}

// Accepts returns true if o is a valid answer to d
func Accepts(d Decision, o Outcome) bool {
	return slices.Contains(d.Outcomes(), o)
}
