package leads

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/leadflow/internal/leads/filter"
	"github.com/wolfman30/leadflow/internal/observability/metrics"
	"github.com/wolfman30/leadflow/internal/pagination"
	"github.com/wolfman30/leadflow/pkg/logging"
)

var leadsTracer = otel.Tracer("leadflow.internal.leads")

// ListResult is one page of leads plus the totals needed to render pagination.
type ListResult struct {
	Leads      []*Lead
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// Service coordinates filter compilation, pagination and storage for leads.
type Service struct {
	repo         Repository
	metrics      *metrics.LeadMetrics
	logger       *logging.Logger
	defaultLimit int
}

// NewService constructs a leads service.
func NewService(repo Repository, m *metrics.LeadMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, metrics: m, logger: logger, defaultLimit: pagination.DefaultLimit}
}

// WithDefaultLimit overrides the page size used when the request gives none.
func (s *Service) WithDefaultLimit(limit int) *Service {
	if limit > 0 {
		s.defaultLimit = limit
	}
	return s
}

// List compiles filters into a predicate and returns the requested page.
// The page query and the total count run concurrently against the same predicate.
func (s *Service) List(ctx context.Context, userID string, filters filter.Spec, rawPage, rawLimit string) (*ListResult, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.list")
	defer span.End()

	pred := filter.Compile(filters)
	plan := pagination.PlanWithDefault(rawPage, rawLimit, s.defaultLimit)
	span.SetAttributes(
		attribute.String("leadflow.user_id", userID),
		attribute.Int("leadflow.filter_clauses", len(pred.Clauses)),
		attribute.Int("leadflow.page", plan.Page),
		attribute.Int("leadflow.limit", plan.Limit),
	)

	var (
		found []*Lead
		total int
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		found, err = s.repo.Find(gctx, userID, pred, plan.Skip, plan.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, userID, pred)
		return err
	})
	err := g.Wait()
	s.metrics.ObserveStoreLatency("list", time.Since(start).Seconds())
	s.metrics.ObserveOperation("list", err)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to list leads", "user_id", userID, "error", err)
		return nil, err
	}
	s.metrics.ObserveList(len(pred.Clauses), total)

	return &ListResult{
		Leads:      found,
		Page:       plan.Page,
		Limit:      plan.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, plan.Limit),
	}, nil
}

// Create stores a new lead for userID.
func (s *Service) Create(ctx context.Context, userID string, req *CreateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.create")
	defer span.End()
	span.SetAttributes(attribute.String("leadflow.user_id", userID))

	req.UserID = userID
	lead, err := s.repo.Create(ctx, req)
	s.metrics.ObserveOperation("create", err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("lead created", "user_id", userID, "lead_id", lead.ID)
	return lead, nil
}

// Get returns a single lead owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.get")
	defer span.End()
	span.SetAttributes(
		attribute.String("leadflow.user_id", userID),
		attribute.String("leadflow.lead_id", id),
	)

	lead, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return lead, nil
}

// Update applies a partial update and stamps last activity.
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateLeadRequest) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.update")
	defer span.End()
	span.SetAttributes(
		attribute.String("leadflow.user_id", userID),
		attribute.String("leadflow.lead_id", id),
	)

	lead, err := s.repo.Update(ctx, userID, id, req)
	s.metrics.ObserveOperation("update", err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("lead updated", "user_id", userID, "lead_id", id)
	return lead, nil
}

// Delete removes a lead owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	ctx, span := leadsTracer.Start(ctx, "leads.delete")
	defer span.End()
	span.SetAttributes(
		attribute.String("leadflow.user_id", userID),
		attribute.String("leadflow.lead_id", id),
	)

	err := s.repo.Delete(ctx, userID, id)
	s.metrics.ObserveOperation("delete", err)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("lead deleted", "user_id", userID, "lead_id", id)
	return nil
}
