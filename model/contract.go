package model

import (
	"fmt"
	"time"
)

// Contract status constants
const (
	StatusDraft             = "draft"
	StatusPendingSignatures = "pending_signatures"
	StatusActive            = "active"
	StatusCompleted         = "completed"
	StatusTerminated        = "terminated"
	StatusDisputed          = "disputed"
)

// Signing role constants
const (
	RolePoster = "poster"
	RoleDoer   = "doer"
)

// Supported contract languages
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

// SchemaVersion is the contract document template version stamped on creation.
const SchemaVersion = "2.0"

// BilingualText holds the English and Arabic variants of one text item.
// Keeping both variants in a single record makes the pairing structural:
// a deliverable or rule entry can never drift out of correspondence.
type BilingualText struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// Empty reports whether neither language variant is present.
func (b BilingualText) Empty() bool {
	return b.En == "" && b.Ar == ""
}

// Signature is the tamper-evidence record written when a party signs.
// Token binds the party's GID to SignedAt; it is not a public-key signature.
type Signature struct {
	SignedAt  time.Time `json:"signed_at"`
	Token     string    `json:"token"`
	IPAddress string    `json:"ip_address,omitempty"`
}

// Party is one side of a contract (poster or doer).
type Party struct {
	UserID        string     `json:"user_id"`
	GID           string     `json:"gid"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	AcceptedTerms bool       `json:"accepted_terms"`
	Signature     *Signature `json:"signature,omitempty"`
}

// Signed reports whether this party has a signature on record.
func (p *Party) Signed() bool {
	return p.Signature != nil
}

// StatusEvent is one entry of the append-only transition trail.
type StatusEvent struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Contract is the central entity: a bilingual work agreement between a job
// poster and a doer.
type Contract struct {
	ID string `json:"id"`

	JobID          string `json:"job_id"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description,omitempty"`

	Poster Party `json:"poster"`
	Doer   Party `json:"doer"`

	// BudgetMinor is the agreed amount in the currency's minor unit,
	// avoiding string or float arithmetic on money.
	BudgetMinor  int64         `json:"budget_minor"`
	Currency     string        `json:"currency"`
	PaymentTerms BilingualText `json:"payment_terms"`

	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	EstimatedDuration string    `json:"estimated_duration,omitempty"`

	Deliverables []BilingualText `json:"deliverables"`

	// PlatformRules is a snapshot of the platform's canonical rule set taken
	// at creation time; later edits to the master list never reach it.
	PlatformRules []BilingualText `json:"platform_rules"`
	RulesVersion  string          `json:"rules_version"`
	PosterRules   []BilingualText `json:"poster_rules,omitempty"`

	Status string        `json:"status"`
	Events []StatusEvent `json:"events,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Version  string `json:"version"`
	Language string `json:"language"`
}

// Validate checks the creation constraints. All failures wrap ErrValidation.
func (c *Contract) Validate() error {
	if c.JobID == "" {
		return fmt.Errorf("%w: missing job id", ErrValidation)
	}
	if c.JobTitle == "" {
		return fmt.Errorf("%w: missing job title", ErrValidation)
	}
	if err := validateParty("poster", &c.Poster); err != nil {
		return err
	}
	if err := validateParty("doer", &c.Doer); err != nil {
		return err
	}
	if c.Poster.UserID == c.Doer.UserID {
		return fmt.Errorf("%w: poster and doer cannot be the same user", ErrValidation)
	}
	if c.BudgetMinor <= 0 {
		return fmt.Errorf("%w: budget must be positive", ErrValidation)
	}
	if c.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrValidation)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: missing timeline", ErrValidation)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	if len(c.Deliverables) == 0 {
		return fmt.Errorf("%w: at least one deliverable required", ErrValidation)
	}
	for i, d := range c.Deliverables {
		if d.En == "" || d.Ar == "" {
			return fmt.Errorf("%w: deliverable %d missing a language variant", ErrValidation, i)
		}
	}
	if c.Language != "" && c.Language != LangEnglish && c.Language != LangArabic {
		return fmt.Errorf("%w: unsupported language %q", ErrValidation, c.Language)
	}
	return nil
}

func validateParty(role string, p *Party) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: %s missing user id", ErrValidation, role)
	}
	if p.GID == "" {
		return fmt.Errorf("%w: %s missing gid", ErrValidation, role)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: %s missing name", ErrValidation, role)
	}
	return nil
}

// PartyByRole returns the party record for a signing role, or nil for an
// unknown role.
func (c *Contract) PartyByRole(role string) *Party {
	switch role {
	case RolePoster:
		return &c.Poster
	case RoleDoer:
		return &c.Doer
	}
	return nil
}

// RoleOf returns the signing role that matches a user id.
func (c *Contract) RoleOf(userID string) (string, bool) {
	switch userID {
	case c.Poster.UserID:
		return RolePoster, true
	case c.Doer.UserID:
		return RoleDoer, true
	}
	return "", false
}

// IsParty reports whether a user is the poster or the doer.
func (c *Contract) IsParty(userID string) bool {
	_, ok := c.RoleOf(userID)
	return ok
}

// IsTerminal reports whether a status admits no further ordinary transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusTerminated, StatusDisputed:
		return true
	}
	return false
}

// IsValidStatus reports whether s is one of the known contract statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPendingSignatures, StatusActive,
		StatusCompleted, StatusTerminated, StatusDisputed:
		return true
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate stored state through
// shared slices or signature pointers.
func (c *Contract) Clone() *Contract {
	out := *c
	out.Poster = cloneParty(c.Poster)
	out.Doer = cloneParty(c.Doer)
	out.Deliverables = append([]BilingualText(nil), c.Deliverables...)
	out.PlatformRules = append([]BilingualText(nil), c.PlatformRules...)
	out.PosterRules = append([]BilingualText(nil), c.PosterRules...)
	out.Events = append([]StatusEvent(nil), c.Events...)
	if c.ActivatedAt != nil {
		t := *c.ActivatedAt
		out.ActivatedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

func cloneParty(p Party) Party {
	if p.Signature != nil {
		sig := *p.Signature
		p.Signature = &sig
	}
	return p
}
