// Package assessment owns the live application state. Every mutation is
// read-latest, compute-next, replace under one lock, followed by a save of
// the blob that changed.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/manrura/internal/aggregation"
	"github.com/terra-clan/manrura/internal/catalog"
	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/metrics"
	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
	"github.com/terra-clan/manrura/internal/storage"
)

// Common errors
var (
	ErrUnknownPoint = errors.New("unknown assessment point")
	ErrWardNotFound = directory.ErrWardNotFound
	ErrUserNotFound = directory.ErrUserNotFound
)

// Manager defines the operations on the application state
type Manager interface {
	Catalog() *catalog.Catalog
	Snapshot(ctx context.Context) *models.Snapshot

	// Directory
	Users(ctx context.Context) []models.User
	FindUser(ctx context.Context, id string) (models.User, error)
	Wards(ctx context.Context) []models.Ward
	Periods(ctx context.Context) []models.AssessmentPeriod
	AddWard(ctx context.Context, name string) (models.Ward, error)
	AddUser(ctx context.Context, req models.CreateUserRequest) (models.User, error)
	AddPeriod(ctx context.Context, req models.CreatePeriodRequest) (models.AssessmentPeriod, error)

	// Assessments
	ApplyScore(ctx context.Context, actor *models.User, nav *policy.Navigation, pointID string, role models.ScoreRole, update models.ScoreUpdate) (models.ScoreResult, error)
	WardAssessments(ctx context.Context, wardID string) (models.WardAssessments, error)
	WardReport(ctx context.Context, wardID string) (*WardReport, error)
	Dashboard(ctx context.Context) *DashboardReport

	Ping(ctx context.Context) error
	Close() error
}

// WardReport is the summary of one ward plus one row per standard
type WardReport struct {
	aggregation.WardSummary
	Standards []aggregation.StandardSummary `json:"standards"`
}

// DashboardReport is the admin dashboard
type DashboardReport struct {
	aggregation.Dashboard
	Periods      []models.AssessmentPeriod `json:"periods"`
	ActivePeriod *models.AssessmentPeriod  `json:"activePeriod,omitempty"`
}

// StateManager implements Manager on an in-memory snapshot backed by a Store
type StateManager struct {
	mu      sync.RWMutex
	state   *models.Snapshot
	catalog *catalog.Catalog
	store   *storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location
}

// Option configures a StateManager
type Option func(*StateManager)

// WithMetrics records state changes on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *StateManager) {
		s.metrics = m
	}
}

// WithClock replaces time.Now, for ward ids and the active period
func WithClock(now func() time.Time) Option {
	return func(s *StateManager) {
		s.now = now
	}
}

// WithLocation sets the timezone whose calendar dates decide the active period
func WithLocation(loc *time.Location) Option {
	return func(s *StateManager) {
		s.loc = loc
	}
}

// NewManager loads the stored state once and returns a ready manager
func NewManager(ctx context.Context, cat *catalog.Catalog, store *storage.Store, opts ...Option) *StateManager {
	m := &StateManager{
		state:   store.Load(ctx),
		catalog: cat,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	slog.Info("state loaded",
		"users", len(m.state.Users),
		"wards", len(m.state.Wards),
		"assessed_wards", len(m.state.Assessments),
		"periods", len(m.state.Periods),
	)

	return m
}

// Catalog returns the immutable standards catalog
func (m *StateManager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Snapshot returns a deep copy of the whole state
func (m *StateManager) Snapshot(ctx context.Context) *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Users lists every user
func (m *StateManager) Users(ctx context.Context) []models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.User{}, m.state.Users...)
}

// FindUser looks up a user by id
func (m *StateManager) FindUser(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := directory.FindUser(m.state.Users, id)
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, nil
}

// Wards lists every ward
func (m *StateManager) Wards(ctx context.Context) []models.Ward {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Ward{}, m.state.Wards...)
}

// Periods lists every assessment period
func (m *StateManager) Periods(ctx context.Context) []models.AssessmentPeriod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AssessmentPeriod{}, m.state.Periods...)
}

// AddWard creates a ward and persists the ward list
func (m *StateManager) AddWard(ctx context.Context, name string) (models.Ward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ward, err := directory.AddWard(m.state.Wards, name, m.now())
	if err != nil {
		return models.Ward{}, err
	}
	m.state.Wards = next
	m.save(ctx, models.KeyWards)
	m.metrics.DirectoryAdd("ward")

	slog.Info("ward added", "ward_id", ward.ID, "name", ward.Name)
	return ward, nil
}

// AddUser creates a user and persists the user list
func (m *StateManager) AddUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, user, err := directory.AddUser(m.state.Users, req)
	if err != nil {
		return models.User{}, err
	}
	m.state.Users = next
	m.save(ctx, models.KeyUsers)
	m.metrics.DirectoryAdd("user")

	slog.Info("user added", "user_id", user.ID, "role", user.Role, "ward_id", user.WardID)
	return user, nil
}

// AddPeriod creates an assessment period and persists the period list
func (m *StateManager) AddPeriod(ctx context.Context, req models.CreatePeriodRequest) (models.AssessmentPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, period, err := directory.AddPeriod(m.state.Periods, req)
	if err != nil {
		return models.AssessmentPeriod{}, err
	}
	m.state.Periods = next
	m.save(ctx, models.KeyPeriods)
	m.metrics.DirectoryAdd("period")

	slog.Info("period added", "period_id", period.ID, "start", period.StartDate, "end", period.EndDate)
	return period, nil
}

// ApplyScore validates the write and hands it to the policy. A write the
// policy declines is not an error: the result has Applied false and nothing
// is saved.
func (m *StateManager) ApplyScore(
	ctx context.Context,
	actor *models.User,
	nav *policy.Navigation,
	pointID string,
	role models.ScoreRole,
	update models.ScoreUpdate,
) (models.ScoreResult, error) {
	if !role.Valid() {
		return models.ScoreResult{}, fmt.Errorf("%w: %q", models.ErrInvalidScoreRole, role)
	}
	if !m.catalog.HasPoint(pointID) {
		return models.ScoreResult{}, fmt.Errorf("%w: %s", ErrUnknownPoint, pointID)
	}
	if err := update.Validate(); err != nil {
		return models.ScoreResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next, result := policy.ApplyScore(m.state.Assessments, actor, nav, pointID, role, update)
	m.metrics.ScoreWrite(string(role), result.Applied)

	if !result.Applied {
		slog.Debug("score write declined", "user_id", userID(actor), "point_id", pointID, "role", role)
		return result, nil
	}

	m.state.Assessments = next
	m.save(ctx, models.KeyAssessments)

	slog.Info("score recorded",
		"user_id", actor.ID,
		"ward_id", result.WardID,
		"point_id", pointID,
		"role", role,
	)
	return result, nil
}

// WardAssessments returns a copy of one ward's assessments. The ward does
// not have to be listed: a Ward Staff user may be bound to a ward id the
// directory never saw, and their records are still readable.
func (m *StateManager) WardAssessments(ctx context.Context, wardID string) (models.WardAssessments, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.Assessments.Ward(wardID), nil
}

// WardReport summarizes one ward overall and per standard
func (m *StateManager) WardReport(ctx context.Context, wardID string) (*WardReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ward, ok := directory.FindWard(m.state.Wards, wardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWardNotFound, wardID)
	}

	report := &WardReport{
		WardSummary: aggregation.SummarizeWard(m.catalog, m.state.Assessments, ward),
		Standards:   make([]aggregation.StandardSummary, 0, len(m.catalog.Standards())),
	}
	for _, std := range m.catalog.Standards() {
		report.Standards = append(report.Standards, aggregation.SummarizeStandard(std, m.state.Assessments, wardID))
	}
	return report, nil
}

// Dashboard builds the admin dashboard
func (m *StateManager) Dashboard(ctx context.Context) *DashboardReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := &DashboardReport{
		Dashboard: aggregation.BuildDashboard(m.catalog, m.state.Assessments, m.state.Wards, m.state.Users),
		Periods:   append([]models.AssessmentPeriod{}, m.state.Periods...),
	}
	today := m.now()
	if m.loc != nil {
		today = today.In(m.loc)
	}
	if p, ok := directory.ActivePeriod(m.state.Periods, today); ok {
		report.ActivePeriod = &p
	}
	return report
}

// Ping checks the storage backend
func (m *StateManager) Ping(ctx context.Context) error {
	return m.store.KV().Ping(ctx)
}

// Close closes the storage backend
func (m *StateManager) Close() error {
	return m.store.KV().Close()
}

// save persists keys. Failures are logged and never fail the mutation.
// Called with m.mu held.
func (m *StateManager) save(ctx context.Context, keys ...string) {
	if err := m.store.Save(context.WithoutCancel(ctx), m.state, keys...); err != nil {
		for _, key := range keys {
			m.metrics.SaveFailure(key)
		}
		slog.Error("failed to save state", "keys", keys, "error", err)
	}
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
