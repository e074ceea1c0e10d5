package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
)

// Client is a Go SDK for the manrura API. It acts as one user.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a client acting as userID. userID may be empty for
// the public endpoints.
func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// As returns a copy of the client acting as another user
func (c *Client) As(userID string) *Client {
	clone := *c
	clone.userID = userID
	return &clone
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

// Session is the acting user with its navigation state
type Session struct {
	User          models.User       `json:"user"`
	Navigation    policy.Navigation `json:"navigation"`
	View          policy.View       `json:"view"`
	DisplayWardID string            `json:"displayWardId,omitempty"`
	Applied       bool              `json:"applied"`
}

// Catalog lists the standards with their totals
type Catalog struct {
	Standards   []models.StandardInfo `json:"standards"`
	TotalPoints int                   `json:"totalPoints"`
	MaxScore    int                   `json:"maxScore"`
}

// WardAssessments is the assessment table of the ward on screen
type WardAssessments struct {
	WardID      string                 `json:"wardId"`
	View        policy.View            `json:"view"`
	ReadOnly    bool                   `json:"readOnly"`
	Assessments models.WardAssessments `json:"assessments"`
}

// WardSummary is the completion and score of one ward
type WardSummary struct {
	WardID         string  `json:"id"`
	Name           string  `json:"name"`
	AssessedPoints int     `json:"assessedPoints"`
	TotalPoints    int     `json:"totalPoints"`
	Score          int     `json:"score"`
	MaxScore       int     `json:"maxScore"`
	Completion     float64 `json:"progress"`
}

// StandardSummary is the per-standard breakdown of a ward
type StandardSummary struct {
	StandardID         string  `json:"standardId"`
	Title              string  `json:"title"`
	AssessedPoints     int     `json:"assessedPoints"`
	TotalPoints        int     `json:"totalPoints"`
	Score              int     `json:"score"`
	MaxScore           int     `json:"maxScore"`
	Completion         float64 `json:"progress"`
	SelfAssessedPoints int     `json:"selfAssessedPoints"`
}

// WardReport is a ward summary with its per-standard rows
type WardReport struct {
	WardSummary
	Standards []StandardSummary `json:"standards"`
}

// OverallSummary aggregates every ward
type OverallSummary struct {
	Wards            int     `json:"wards"`
	AssessedPoints   int     `json:"assessedPoints"`
	PossiblePoints   int     `json:"possiblePoints"`
	AssessedScore    int     `json:"assessedScore"`
	AssessedMaxScore int     `json:"assessedMaxScore"`
	Completion       float64 `json:"overallCompletion"`
	AverageScore     float64 `json:"overallAverageScore"`
}

// Dashboard is the admin overview
type Dashboard struct {
	TotalWards     int                       `json:"totalWards"`
	TotalAssessors int                       `json:"totalAssessors"`
	Overall        OverallSummary            `json:"overall"`
	Wards          []WardSummary             `json:"wards"`
	Periods        []models.AssessmentPeriod `json:"periods"`
	ActivePeriod   *models.AssessmentPeriod  `json:"activePeriod,omitempty"`
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// LoginUsers lists the accounts offered on the login screen
func (c *Client) LoginUsers(ctx context.Context) ([]models.User, error) {
	return call[[]models.User](ctx, c, http.MethodGet, "/api/v1/login-users", nil)
}

// Login starts a navigation session for the client's user
func (c *Client) Login(ctx context.Context) (*Session, error) {
	return call[*Session](ctx, c, http.MethodPost, "/api/v1/login", models.LoginRequest{UserID: c.userID})
}

// Me returns the acting user and navigation state
func (c *Client) Me(ctx context.Context) (*Session, error) {
	return call[*Session](ctx, c, http.MethodGet, "/api/v1/me", nil)
}

// Catalog lists the standards
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	return call[*Catalog](ctx, c, http.MethodGet, "/api/v1/catalog", nil)
}

// Standard returns one standard with its elements and points
func (c *Client) Standard(ctx context.Context, id string) (*models.Standard, error) {
	return call[*models.Standard](ctx, c, http.MethodGet, "/api/v1/catalog/"+url.PathEscape(id), nil)
}

// SelectStandard switches the standard on screen
func (c *Client) SelectStandard(ctx context.Context, standardID string) (*Session, error) {
	body := map[string]string{"standardId": standardID}
	return call[*Session](ctx, c, http.MethodPost, "/api/v1/navigation/standard", body)
}

// SelectWard selects or inspects a ward
func (c *Client) SelectWard(ctx context.Context, wardID string) (*Session, error) {
	body := map[string]string{"wardId": wardID}
	return call[*Session](ctx, c, http.MethodPost, "/api/v1/navigation/ward", body)
}

// ReturnToDashboard leaves the admin ward detail view
func (c *Client) ReturnToDashboard(ctx context.Context) (*Session, error) {
	return call[*Session](ctx, c, http.MethodPost, "/api/v1/navigation/dashboard", nil)
}

// Assessments returns the assessments of the ward on screen
func (c *Client) Assessments(ctx context.Context) (*WardAssessments, error) {
	return call[*WardAssessments](ctx, c, http.MethodGet, "/api/v1/assessments", nil)
}

// ApplyScore writes one sub-record. wardID is an optional selection hint.
func (c *Client) ApplyScore(ctx context.Context, pointID string, role models.ScoreRole, wardID string, update models.ScoreUpdate) (*models.ScoreResult, error) {
	path := fmt.Sprintf("/api/v1/assessments/%s/%s", url.PathEscape(pointID), url.PathEscape(string(role)))
	return call[*models.ScoreResult](ctx, c, http.MethodPut, path, models.ScoreRequest{WardID: wardID, Update: update})
}

// WardSummary returns the completion and score of one ward
func (c *Client) WardSummary(ctx context.Context, wardID string) (*WardReport, error) {
	return call[*WardReport](ctx, c, http.MethodGet, "/api/v1/wards/"+url.PathEscape(wardID)+"/summary", nil)
}

// Dashboard returns the admin overview
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	return call[*Dashboard](ctx, c, http.MethodGet, "/api/v1/dashboard", nil)
}

// Wards lists the wards
func (c *Client) Wards(ctx context.Context) ([]models.Ward, error) {
	return call[[]models.Ward](ctx, c, http.MethodGet, "/api/v1/wards", nil)
}

// CreateWard adds a ward
func (c *Client) CreateWard(ctx context.Context, name string) (*models.Ward, error) {
	return call[*models.Ward](ctx, c, http.MethodPost, "/api/v1/wards", models.CreateWardRequest{Name: name})
}

// Users lists the accounts
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	return call[[]models.User](ctx, c, http.MethodGet, "/api/v1/users", nil)
}

// CreateUser adds an account
func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	return call[*models.User](ctx, c, http.MethodPost, "/api/v1/users", req)
}

// Periods lists the assessment periods
func (c *Client) Periods(ctx context.Context) ([]models.AssessmentPeriod, error) {
	return call[[]models.AssessmentPeriod](ctx, c, http.MethodGet, "/api/v1/periods", nil)
}

// CreatePeriod adds an assessment period
func (c *Client) CreatePeriod(ctx context.Context, req models.CreatePeriodRequest) (*models.AssessmentPeriod, error) {
	return call[*models.AssessmentPeriod](ctx, c, http.MethodPost, "/api/v1/periods", req)
}

// Ask sends one question to the assistant and returns its reply
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	msg, err := call[models.ChatMessage](ctx, c, http.MethodPost, "/api/v1/chat", models.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}
	return msg.Text, nil
}

// call sends body as JSON and unwraps the response envelope into T
func call[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, reader)
	if err != nil {
		return zero, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result.Data, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("Authorization", "Bearer "+c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var envelope struct {
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}

	return respBody, nil
}
