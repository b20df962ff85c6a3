package leads

import (
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Sources accepted for a lead
var Sources = []string{"website", "facebook_ads", "google_ads", "referral", "events", "other"}

// Statuses accepted for a lead
var Statuses = []string{"new", "contacted", "qualified", "lost", "won"}

// DefaultStatus is assigned when a lead is created without one
const DefaultStatus = "new"

// Lead is a sales prospect owned by exactly one user
type Lead struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Company        string     `json:"company"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	IsQualified    bool       `json:"is_qualified"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FieldValue exposes lead fields to the in-memory filter evaluator.
func (l *Lead) FieldValue(field string) (any, bool) {
	switch field {
	case "first_name":
		return l.FirstName, true
	case "last_name":
		return l.LastName, true
	case "email":
		return l.Email, true
	case "phone":
		return l.Phone, true
	case "company":
		return l.Company, true
	case "city":
		return l.City, true
	case "state":
		return l.State, true
	case "source":
		return l.Source, true
	case "status":
		return l.Status, true
	case "score":
		return l.Score, true
	case "lead_value":
		return l.LeadValue, true
	case "is_qualified":
		return l.IsQualified, true
	case "last_activity_at":
		if l.LastActivityAt == nil {
			return nil, false
		}
		return *l.LastActivityAt, true
	case "created_at":
		return l.CreatedAt, true
	case "updated_at":
		return l.UpdatedAt, true
	}
	return nil, false
}

// CreateLeadRequest is the body of POST /api/leads
type CreateLeadRequest struct {
	UserID      string   `json:"-"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Source      string   `json:"source"`
	Status      *string  `json:"status,omitempty"`
	Score       *int     `json:"score,omitempty"`
	LeadValue   *float64 `json:"lead_value,omitempty"`
	IsQualified *bool    `json:"is_qualified,omitempty"`
}

// Normalize trims text fields and lowercases the email.
func (r *CreateLeadRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = normalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Company = strings.TrimSpace(r.Company)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Source = strings.TrimSpace(r.Source)
}

// Validate normalizes and validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingOwner
	}
	r.Normalize()

	checks := []error{
		requiredText("first_name", "First name", r.FirstName, 50),
		requiredText("last_name", "Last name", r.LastName, 50),
		validateEmail(r.Email),
		validatePhone(r.Phone, "Phone is required"),
		requiredText("company", "Company", r.Company, 100),
		requiredText("city", "City", r.City, 50),
		requiredText("state", "State", r.State, 50),
		validateSource(r.Source),
		validateOptional(r.Status, validateStatus),
		validateOptional(r.Score, validateScore),
		validateOptional(r.LeadValue, validateLeadValue),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateLeadRequest is the body of PUT /api/leads/{id}; nil fields are left unchanged
type UpdateLeadRequest struct {
	FirstName   *string  `json:"first_name,omitempty"`
	LastName    *string  `json:"last_name,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Company     *string  `json:"company,omitempty"`
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
	Source      *string  `json:"source,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Score       *int     `json:"score,omitempty"`
	LeadValue   *float64 `json:"lead_value,omitempty"`
	IsQualified *bool    `json:"is_qualified,omitempty"`
}

// Validate normalizes and validates only the supplied fields
func (r *UpdateLeadRequest) Validate() error {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.FirstName)
	trim(r.LastName)
	trim(r.Phone)
	trim(r.Company)
	trim(r.City)
	trim(r.State)
	trim(r.Source)
	if r.Email != nil {
		*r.Email = normalizeEmail(*r.Email)
	}

	checks := []error{
		optionalText("first_name", "First name", r.FirstName, 50),
		optionalText("last_name", "Last name", r.LastName, 50),
		validateOptional(r.Email, validateEmail),
		validateOptional(r.Phone, func(p string) error { return validatePhone(p, "Phone cannot be empty") }),
		optionalText("company", "Company", r.Company, 100),
		optionalText("city", "City", r.City, 50),
		optionalText("state", "State", r.State, 50),
		validateOptional(r.Source, validateSource),
		validateOptional(r.Status, validateStatus),
		validateOptional(r.Score, validateScore),
		validateOptional(r.LeadValue, validateLeadValue),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the supplied fields onto lead.
func (r *UpdateLeadRequest) Apply(lead *Lead) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&lead.FirstName, r.FirstName)
	set(&lead.LastName, r.LastName)
	set(&lead.Email, r.Email)
	set(&lead.Phone, r.Phone)
	set(&lead.Company, r.Company)
	set(&lead.City, r.City)
	set(&lead.State, r.State)
	set(&lead.Source, r.Source)
	set(&lead.Status, r.Status)
	if r.Score != nil {
		lead.Score = *r.Score
	}
	if r.LeadValue != nil {
		lead.LeadValue = *r.LeadValue
	}
	if r.IsQualified != nil {
		lead.IsQualified = *r.IsQualified
	}
}

// newLead builds a lead from a validated request, applying defaults.
func newLead(id string, req *CreateLeadRequest, now time.Time) *Lead {
	lead := &Lead{
		ID:        id,
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		City:      req.City,
		State:     req.State,
		Source:    req.Source,
		Status:    DefaultStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	if req.Score != nil {
		lead.Score = *req.Score
	}
	if req.LeadValue != nil {
		lead.LeadValue = *req.LeadValue
	}
	if req.IsQualified != nil {
		lead.IsQualified = *req.IsQualified
	}
	return lead
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requiredText(field, label, value string, maxLen int) error {
	if value == "" {
		return invalid(field, label+" is required")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return invalid(field, label+" must be less than "+strconv.Itoa(maxLen)+" characters")
	}
	return nil
}

func optionalText(field, label string, value *string, maxLen int) error {
	if value == nil {
		return nil
	}
	if *value == "" {
		return invalid(field, label+" cannot be empty")
	}
	return requiredText(field, label, *value, maxLen)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "Please provide a valid email")
	}
	if len(email) > 100 {
		return invalid("email", "Email must be less than 100 characters")
	}
	return nil
}

func validatePhone(phone, emptyMessage string) error {
	if phone == "" {
		return invalid("phone", emptyMessage)
	}
	if n := utf8.RuneCountInString(phone); n < 10 || n > 15 {
		return invalid("phone", "Phone must be between 10 and 15 characters")
	}
	return nil
}

func validateSource(source string) error {
	if !slices.Contains(Sources, source) {
		return invalid("source", "Invalid source. Must be one of: "+strings.Join(Sources, ", "))
	}
	return nil
}

func validateStatus(status string) error {
	if !slices.Contains(Statuses, status) {
		return invalid("status", "Invalid status. Must be one of: "+strings.Join(Statuses, ", "))
	}
	return nil
}

func validateScore(score int) error {
	if score < 0 || score > 100 {
		return invalid("score", "Score must be an integer between 0 and 100")
	}
	return nil
}

func validateLeadValue(value float64) error {
	if value < 0 {
		return invalid("lead_value", "Lead value must be a positive number")
	}
	return nil
}

func validateOptional[T any](value *T, check func(T) error) error {
	if value == nil {
		return nil
	}
	return check(*value)
}
