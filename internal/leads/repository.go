package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/leadflow/internal/leads/filter"
)

// Repository defines the interface for lead storage. Every method is scoped
// to the owning user; the owner constraint is always applied by the store in
// addition to any compiled filter.
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, userID, id string) (*Lead, error)
	Update(ctx context.Context, userID, id string, req *UpdateLeadRequest) (*Lead, error)
	Delete(ctx context.Context, userID, id string) error
	Find(ctx context.Context, userID string, pred filter.Predicate, skip, limit int) ([]*Lead, error)
	Count(ctx context.Context, userID string, pred filter.Predicate) (int, error)
}

// Importer stores a fully populated lead as-is, keeping its id and timestamps.
// It backs data seeding and is not exposed over HTTP.
type Importer interface {
	Import(ctx context.Context, lead *Lead) error
}

// InMemoryRepository is an implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(req.Email, "") {
		return nil, ErrDuplicateEmail
	}
	lead := newLead(uuid.New().String(), req, r.now())
	r.leads[lead.ID] = lead

	return clone(lead), nil
}

// Import stores lead with its own id and timestamps
func (r *InMemoryRepository) Import(ctx context.Context, lead *Lead) error {
	if lead.UserID == "" {
		return ErrMissingOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(lead.Email, lead.ID) {
		return ErrDuplicateEmail
	}
	r.leads[lead.ID] = clone(lead)
	return nil
}

// GetByID retrieves a lead by ID for its owner
func (r *InMemoryRepository) GetByID(ctx context.Context, userID, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidLeadID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return nil, ErrLeadNotFound
	}
	return clone(lead), nil
}

// Update applies the supplied fields and stamps last activity
func (r *InMemoryRepository) Update(ctx context.Context, userID, id string, req *UpdateLeadRequest) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidLeadID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return nil, ErrLeadNotFound
	}
	if req.Email != nil && r.emailTakenLocked(*req.Email, id) {
		return nil, ErrDuplicateEmail
	}

	updated := clone(lead)
	req.Apply(updated)
	now := r.now()
	updated.LastActivityAt = &now
	updated.UpdatedAt = now
	r.leads[id] = updated

	return clone(updated), nil
}

// Delete removes a lead owned by userID
func (r *InMemoryRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidLeadID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

// Find returns the owner's leads matching pred, newest first
func (r *InMemoryRepository) Find(ctx context.Context, userID string, pred filter.Predicate, skip, limit int) ([]*Lead, error) {
	matched := r.match(userID, pred)
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*Lead{}, nil
	}
	end := len(matched)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], nil
}

// Count returns how many of the owner's leads match pred
func (r *InMemoryRepository) Count(ctx context.Context, userID string, pred filter.Predicate) (int, error) {
	return len(r.match(userID, pred)), nil
}

func (r *InMemoryRepository) match(userID string, pred filter.Predicate) []*Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, lead := range r.leads {
		if lead.UserID == userID && pred.Matches(lead) {
			out = append(out, clone(lead))
		}
	}
	return out
}

func (r *InMemoryRepository) emailTakenLocked(email, exceptID string) bool {
	for id, lead := range r.leads {
		if id != exceptID && lead.Email == email {
			return true
		}
	}
	return false
}

func clone(lead *Lead) *Lead {
	cp := *lead
	if lead.LastActivityAt != nil {
		t := *lead.LastActivityAt
		cp.LastActivityAt = &t
	}
	return &cp
}
