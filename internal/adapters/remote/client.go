// Package remote implements the HTTP gateway to the activity ledger.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/retreatworks/bandscan/internal/app"
	"github.com/retreatworks/bandscan/internal/domain"
)

// Per-endpoint protocol version tags the ledger expects.
const (
	apiVersionMeal = "2.9"
	apiVersionGift = "3.10"
)

// Config captures gateway configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *charmLog.Logger
}

// Client is the HTTP implementation of the app.Gateway port.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *charmLog.Logger
}

// New builds a ledger gateway.
func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

// normalizeConfig applies deterministic defaults to gateway config.
func normalizeConfig(cfg Config) Config {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = charmLog.Default()
	}
	return cfg
}

// successFlags tolerates the ledger's two spellings of the success flag.
// Some endpoints answer "success", others "isSuccess"; either counts.
type successFlags struct {
	Success   bool `json:"success"`
	IsSuccess bool `json:"isSuccess"`
}

func (f successFlags) ok() bool {
	return f.Success || f.IsSuccess
}

type giftDetailPayload struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type memberPayload struct {
	MemberID         string              `json:"memberId"`
	TagID            string              `json:"tagId"`
	LegalName        string              `json:"legalName"`
	SpiritualName    string              `json:"spiritualName"`
	RegistrationType string              `json:"registrationType"`
	MealOption       string              `json:"mealOption"`
	IsSPDisciple     string              `json:"isSPDisciple"`
	SponsorAmount    int                 `json:"sponsorAmount"`
	ServicesOffered  string              `json:"servicesOffered"`
	GiftDetails      []giftDetailPayload `json:"giftDetails"`
}

func (m memberPayload) toDomain() domain.MemberDetails {
	details := domain.MemberDetails{
		MemberID:         m.MemberID,
		TagID:            m.TagID,
		LegalName:        m.LegalName,
		SpiritualName:    m.SpiritualName,
		RegistrationType: m.RegistrationType,
		MealOption:       m.MealOption,
		SPDisciple:       m.IsSPDisciple == "Y",
		SponsorAmount:    m.SponsorAmount,
		ServicesOffered:  m.ServicesOffered,
	}
	for _, g := range m.GiftDetails {
		details.GiftDetails = append(details.GiftDetails, domain.GiftDetail{Name: g.Name, Status: g.Status})
	}
	return details
}

type serviceOptionPayload struct {
	ID           string `json:"id"`
	ServiceName  string `json:"serviceName"`
	DisplayKey   string `json:"displayKey"`
	DisplayValue string `json:"displayValue"`
	SignedUp     bool   `json:"isSignedUp"`
	Acknowledged bool   `json:"acknowledged"`
}

type activityResponse struct {
	successFlags
	Message         string                 `json:"message"`
	TotalCount      int                    `json:"totalCount"`
	TshirtApproved  int                    `json:"tshirtApproved"`
	TshirtFulfilled int                    `json:"tshirtFulfilled"`
	JacketApproved  int                    `json:"jacketApproved"`
	JacketFulfilled int                    `json:"jacketFulfilled"`
	Member          memberPayload          `json:"memberDetails"`
	ServiceOptions  []serviceOptionPayload `json:"serviceOptions"`
}

// MemberActivity fetches a tag's counters for one activity. Absent count
// fields decode as zero, so an unseen tag comes back as all-zero counters.
func (c *Client) MemberActivity(ctx context.Context, q app.ActivityQuery) (app.Snapshot, error) {
	params := url.Values{}
	params.Set("tagId", q.TagID)
	params.Set("activity", q.Activity)
	if q.Category != "" {
		params.Set("category", q.Category)
	}

	var resp activityResponse
	if err := c.call(ctx, http.MethodGet, "/getMemberActivity", params, nil, &resp); err != nil {
		return app.Snapshot{}, err
	}
	if !resp.ok() {
		return app.Snapshot{}, rejectionError(resp.Message)
	}

	snapshot := domain.CountersSnapshot{
		TagID:           q.TagID,
		TshirtApproved:  resp.TshirtApproved,
		TshirtFulfilled: resp.TshirtFulfilled,
		JacketApproved:  resp.JacketApproved,
		JacketFulfilled: resp.JacketFulfilled,
		MealCount:       resp.TotalCount,
	}
	for _, opt := range resp.ServiceOptions {
		snapshot.Services = append(snapshot.Services, domain.ServiceOption{
			ID:           opt.ID,
			ServiceName:  opt.ServiceName,
			DisplayKey:   opt.DisplayKey,
			DisplayValue: opt.DisplayValue,
			SignedUp:     opt.SignedUp,
			Acknowledged: opt.Acknowledged,
		})
	}
	counters, err := domain.CountersFromSnapshot(snapshot)
	if err != nil {
		return app.Snapshot{}, err
	}
	return app.Snapshot{
		Member:   resp.Member.toDomain(),
		Counters: counters,
		Message:  resp.Message,
	}, nil
}

// updatePayload carries the scanned member as memberId and the operator as
// scannerMemberId; the ledger audits both sides of every mutation.
type updatePayload struct {
	RequestID       string `json:"requestId,omitempty"`
	TagID           string `json:"tagId"`
	MemberID        string `json:"memberId,omitempty"`
	ScannerMemberID string `json:"scannerMemberId"`
	Activity        string `json:"activity"`
	ActivityID      any    `json:"activityId,omitempty"`
	Category        string `json:"category,omitempty"`
	Quantity        int    `json:"quantity"`
	Remove          bool   `json:"remove,omitempty"`
	Location        string `json:"location,omitempty"`
	APIVersion      string `json:"apiVersion"`
}

// SubmitActivity posts one validated update to the ledger.
func (c *Client) SubmitActivity(ctx context.Context, req domain.UpdateRequest) error {
	payload := updatePayload{
		RequestID:       req.ClientRequestID,
		TagID:           req.TagID,
		MemberID:        req.MemberID,
		ScannerMemberID: req.ScannerID,
		Activity:        req.Activity,
		Quantity:        req.Quantity,
		Remove:          req.Remove,
		Location:        req.Location,
		APIVersion:      apiVersionMeal,
	}
	if req.Category != domain.CategoryMeal {
		payload.Category = domain.WireCategoryGiftTracking
		payload.APIVersion = apiVersionGift
	}
	// Gifts submit their numeric activity id; services submit the option id.
	switch {
	case req.Category.IsGift():
		payload.ActivityID = req.GiftActivityID
	case req.Category == domain.CategoryService:
		payload.ActivityID = req.ServiceOptionID
	}

	var resp struct {
		successFlags
		Message string `json:"message"`
	}
	if err := c.call(ctx, http.MethodPost, "/updateMemberActivity", nil, payload, &resp); err != nil {
		return err
	}
	if !resp.ok() {
		return rejectionError(resp.Message)
	}
	return nil
}

type loginResponse struct {
	successFlags
	Message       string   `json:"message"`
	MemberID      string   `json:"memberId"`
	LegalName     string   `json:"legalName"`
	SpiritualName string   `json:"spiritualName"`
	Permissions   []string `json:"permissions"`
}

// LoginScanner authenticates an operator tag for the event.
func (c *Client) LoginScanner(ctx context.Context, tagID, memberID, eventID string) (domain.Session, error) {
	params := url.Values{}
	params.Set("tagId", tagID)
	params.Set("memberId", memberID)
	params.Set("eventId", eventID)

	var resp loginResponse
	if err := c.call(ctx, http.MethodGet, "/loginScanner", params, nil, &resp); err != nil {
		return domain.Session{}, err
	}
	if !resp.ok() {
		return domain.Session{}, rejectionError(resp.Message)
	}
	return domain.NewSession(domain.SessionInput{
		MemberID:      resp.MemberID,
		LegalName:     resp.LegalName,
		SpiritualName: resp.SpiritualName,
		EventID:       eventID,
		Permissions:   domain.PermissionsFromList(resp.Permissions),
	})
}

type registerPayload struct {
	TagID      string `json:"tagId"`
	MemberID   string `json:"memberId"`
	ScannedBy  string `json:"scannedBy"`
	APIVersion string `json:"apiVersion"`
}

// RegisterTag binds a tag to a member record on the ledger.
func (c *Client) RegisterTag(ctx context.Context, reg domain.TagRegistration) (string, error) {
	payload := registerPayload{
		TagID:      reg.TagID,
		MemberID:   reg.MemberID,
		ScannedBy:  reg.ScannerID,
		APIVersion: apiVersionGift,
	}

	var resp struct {
		successFlags
		Message string `json:"message"`
	}
	if err := c.call(ctx, http.MethodPut, "/registerTag", nil, payload, &resp); err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", rejectionError(resp.Message)
	}
	return resp.Message, nil
}

type statsResponse struct {
	successFlags
	Message string `json:"message"`
	Stats   []struct {
		ActivityName  string `json:"activityName"`
		DisplayFields []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"displayFields"`
	} `json:"stats"`
}

// ActivityStats fetches aggregate rows for one activity.
func (c *Client) ActivityStats(ctx context.Context, adminID, activity string) ([]app.StatsRow, error) {
	params := url.Values{}
	params.Set("adminId", adminID)
	params.Set("activity", activity)

	var resp statsResponse
	if err := c.call(ctx, http.MethodGet, "/getActivityStats", params, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, rejectionError(resp.Message)
	}

	rows := make([]app.StatsRow, 0, len(resp.Stats))
	for _, s := range resp.Stats {
		row := app.StatsRow{ActivityName: s.ActivityName}
		for _, f := range s.DisplayFields {
			row.Fields = append(row.Fields, app.StatsField{Key: f.Key, Value: f.Value})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rejectionError(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "request rejected"
	}
	return fmt.Errorf("ledger: %s", message)
}

// call runs one HTTP exchange against the ledger and decodes the JSON reply.
func (c *Client) call(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("ledger call failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("ledger call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
