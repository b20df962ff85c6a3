// Package seed fills a store with demo users and leads.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/wolfman30/leadflow/internal/auth"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Demo account that always exists after seeding.
const (
	DemoName     = "Test User"
	DemoEmail    = "testuser@gmail.com"
	DemoPassword = "Test1234"
)

const (
	historyWindow   = 180 * 24 * time.Hour
	qualifiedRate   = 0.6
	activityRate    = 0.7
	minLeadValue    = 1000
	leadValueSpread = 15000
	seedPassword    = "Seed1234"

	DefaultUsers = 10
	DefaultLeads = 100
)

var (
	firstNames = []string{"Ava", "Liam", "Maya", "Noah", "Zoe", "Ethan", "Iris", "Owen", "Nora", "Leo", "Ruby", "Felix"}
	lastNames  = []string{"Carter", "Nguyen", "Patel", "Okafor", "Schmidt", "Rossi", "Tanaka", "Silva", "Kowalski", "Haddad"}
	cities     = []struct{ City, State string }{
		{"Austin", "TX"}, {"Denver", "CO"}, {"Seattle", "WA"}, {"Boston", "MA"}, {"Chicago", "IL"},
		{"Portland", "OR"}, {"Atlanta", "GA"}, {"Phoenix", "AZ"}, {"Miami", "FL"}, {"Columbus", "OH"},
	}
	companySuffixes = []string{"Inc", "LLC", "Group", "Labs", "Partners", "Co"}
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, req *auth.RegisterRequest) (*auth.Session, error)
}

// UserLookup resolves accounts that already exist.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
}

// Options controls how much data Run produces. Users below one fall back to
// DefaultUsers since the demo account is always created; Leads is taken as given.
type Options struct {
	Users int
	Leads int
	// Reset removes the demo account's existing leads when the store supports it.
	Reset bool
}

// Result summarizes a Run.
type Result struct {
	UserIDs      []string
	LeadsCreated int
	LeadsSkipped int
}

type leadResetter interface {
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

// Generator produces randomized demo records.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator driven by rng. A nil rng uses a random seed.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, now: time.Now}
}

// Users returns n registration requests. The first is always the demo account.
func (g *Generator) Users(n int) []auth.RegisterRequest {
	if n <= 0 {
		return nil
	}
	reqs := make([]auth.RegisterRequest, 0, n)
	reqs = append(reqs, auth.RegisterRequest{Name: DemoName, Email: DemoEmail, Password: DemoPassword})
	for i := 1; i < n; i++ {
		name := petname.Generate(2, " ")
		reqs = append(reqs, auth.RegisterRequest{
			Name:     titleCase(name),
			Email:    fmt.Sprintf("%s.%d@example.com", strings.ReplaceAll(name, " ", "."), i),
			Password: seedPassword,
		})
	}
	return reqs
}

// Lead returns a random lead owned by ownerID. seq keeps emails unique within a run.
func (g *Generator) Lead(ownerID string, seq int) *leads.Lead {
	now := g.now().UTC()
	created := now.Add(-time.Duration(g.rng.Int64N(int64(historyWindow))))
	first := pick(g.rng, firstNames)
	last := pick(g.rng, lastNames)
	place := cities[g.rng.IntN(len(cities))]

	lead := &leads.Lead{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		FirstName:   first,
		LastName:    last,
		Email:       fmt.Sprintf("%s.%s.%d.%s@example.com", strings.ToLower(first), strings.ToLower(last), seq, uuid.NewString()[:8]),
		Phone:       g.phone(),
		Company:     titleCase(petname.Generate(2, " ")) + " " + pick(g.rng, companySuffixes),
		City:        place.City,
		State:       place.State,
		Source:      pick(g.rng, leads.Sources),
		Status:      pick(g.rng, leads.Statuses),
		Score:       g.rng.IntN(101),
		LeadValue:   float64(minLeadValue + g.rng.IntN(leadValueSpread)),
		IsQualified: g.rng.Float64() < qualifiedRate,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if g.rng.Float64() < activityRate {
		activity := created.Add(time.Duration(g.rng.Int64N(int64(now.Sub(created)) + 1)))
		lead.LastActivityAt = &activity
	}
	return lead
}

func (g *Generator) phone() string {
	var b strings.Builder
	b.WriteByte(byte('2' + g.rng.IntN(8)))
	for i := 0; i < 9; i++ {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

// Run registers opts.Users accounts and spreads opts.Leads leads across them.
// Accounts that already exist are reused.
func Run(ctx context.Context, gen *Generator, reg Registrar, users UserLookup, importer leads.Importer, opts Options, logger *logging.Logger) (*Result, error) {
	if reg == nil || users == nil || importer == nil {
		return nil, errors.New("seed: registrar, user lookup and importer are required")
	}
	if gen == nil {
		gen = NewGenerator(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Users <= 0 {
		opts.Users = DefaultUsers
	}

	result := &Result{}
	for _, req := range gen.Users(opts.Users) {
		id, err := ensureUser(ctx, reg, users, req)
		if err != nil {
			return nil, err
		}
		result.UserIDs = append(result.UserIDs, id)
	}
	logger.Info("seed users ready", "count", len(result.UserIDs))

	if opts.Reset {
		if resetter, ok := importer.(leadResetter); ok {
			removed, err := resetter.DeleteAllForUser(ctx, result.UserIDs[0])
			if err != nil {
				return nil, fmt.Errorf("seed: reset leads: %w", err)
			}
			logger.Info("seed removed existing demo leads", "count", removed)
		} else {
			logger.Warn("seed reset not supported by lead store")
		}
	}

	for i := 0; i < opts.Leads; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		owner := result.UserIDs[gen.rng.IntN(len(result.UserIDs))]
		err := importer.Import(ctx, gen.Lead(owner, i))
		switch {
		case errors.Is(err, leads.ErrDuplicateEmail):
			result.LeadsSkipped++
		case err != nil:
			return result, fmt.Errorf("seed: import lead %d: %w", i, err)
		default:
			result.LeadsCreated++
		}
	}
	logger.Info("seed leads imported", "created", result.LeadsCreated, "skipped", result.LeadsSkipped)
	return result, nil
}

func ensureUser(ctx context.Context, reg Registrar, users UserLookup, req auth.RegisterRequest) (string, error) {
	session, err := reg.Register(ctx, &req)
	if err == nil {
		return session.User.ID, nil
	}
	if !errors.Is(err, auth.ErrUserExists) {
		return "", fmt.Errorf("seed: register %s: %w", req.Email, err)
	}
	existing, err := users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("seed: lookup %s: %w", req.Email, err)
	}
	return existing.ID, nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
