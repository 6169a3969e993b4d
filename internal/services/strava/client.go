// Package strava wraps the Strava v3 API for a single athlete: OAuth
// connect/disconnect, activity fetches shaped for the dashboard, and
// weekly mileage rollups. All responses flow through the shared keyed
// cache so repeated dashboard loads don't hammer the API.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/rkahn/rundash/internal/cache"
	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/store"
	"github.com/rkahn/rundash/internal/timeutil"
)

const (
	defaultAuthURL  = "https://www.strava.com/oauth/authorize"
	defaultTokenURL = "https://www.strava.com/oauth/token"
	defaultAPIBase  = "https://www.strava.com/api/v3"

	// activityListTTL covers list-shaped fetches (recent feed, week
	// rollups); activityDetailTTL covers per-activity detail.
	activityListTTL   = 5 * time.Minute
	activityDetailTTL = 10 * time.Minute

	requestTimeout = 10 * time.Second
)

// Client talks to the Strava API on behalf of the one connected
// athlete. The zero value is not usable; construct with NewClient.
type Client struct {
	oauth   *oauth2.Config
	tokens  *store.TokenStore
	cache   *cache.KeyedCache
	geo     *Geocoder
	clock   cache.Clock
	loc     *time.Location
	log     *zap.Logger
	apiBase string
	http    *http.Client
}

// Options configures a Client. ClientID and ClientSecret come from the
// Strava application registration; RedirectURL is where the OAuth
// callback lands.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Tokens       *store.TokenStore
	Cache        *cache.KeyedCache
	Geocoder     *Geocoder
	Clock        cache.Clock
	Location     *time.Location
	Logger       *zap.Logger

	// AuthURL, TokenURL, and APIBase override the Strava endpoints;
	// empty means production. Tests point these at httptest servers.
	AuthURL  string
	TokenURL string
	APIBase  string

	// HTTPClient is the base client for API calls; nil means a
	// default with a 10s timeout.
	HTTPClient *http.Client
}

// NewClient builds a Strava client from opts.
func NewClient(opts Options) *Client {
	authURL := opts.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
			// Strava wants its scopes comma-joined in a single
			// parameter, not space-separated.
			Scopes: []string{"read,activity:read_all,profile:read_all"},
		},
		tokens:  opts.Tokens,
		cache:   opts.Cache,
		geo:     opts.Geocoder,
		clock:   clock,
		loc:     loc,
		log:     log,
		apiBase: apiBase,
		http:    httpClient,
	}
}

// Configured reports whether OAuth credentials are present.
func (c *Client) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// Connected reports whether a token is saved for the athlete.
func (c *Client) Connected() bool {
	return c.tokens.Connected()
}

// AuthURL returns the Strava authorization URL carrying state.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "auto"),
	)
}

// Exchange trades the callback code for a token pair and persists it.
func (c *Client) Exchange(ctx context.Context, code string) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("strava token exchange: %w", err)
	}
	if err := c.tokens.Save(tok); err != nil {
		return fmt.Errorf("save strava token: %w", err)
	}
	c.cache.ClearAll()
	c.log.Info("strava_connected")
	return nil
}

// Disconnect removes the saved token and drops cached API data.
func (c *Client) Disconnect() error {
	if err := c.tokens.Clear(); err != nil {
		return err
	}
	c.cache.ClearAll()
	c.log.Info("strava_disconnected")
	return nil
}

// ClearCache drops all cached API responses, forcing fresh fetches.
func (c *Client) ClearCache() {
	c.cache.ClearAll()
}

// persistingSource wraps an oauth2.TokenSource and writes each
// refreshed token back to the store before handing it out.
type persistingSource struct {
	src    oauth2.TokenSource
	tokens *store.TokenStore
	last   string
	log    *zap.Logger
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.tokens.Save(tok); err != nil {
			p.log.Warn("token_persist_failed", zap.Error(err))
		}
	}
	return tok, nil
}

// apiClient returns an authenticated HTTP client, refreshing the token
// if expired. Returns ErrNotConnected when no token is saved.
func (c *Client) apiClient(ctx context.Context) (*http.Client, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("load strava token: %w", err)
	}
	if tok == nil {
		return nil, ErrNotConnected
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	src := &persistingSource{
		src:    c.oauth.TokenSource(ctx, tok),
		tokens: c.tokens,
		last:   tok.AccessToken,
		log:    c.log,
	}
	return oauth2.NewClient(ctx, src), nil
}

// ErrNotConnected is returned when no Strava token is on file.
var ErrNotConnected = errors.New("not connected to strava")

// apiGet performs an authenticated GET against the Strava API and
// decodes the JSON response into out.
func (c *Client) apiGet(ctx context.Context, endpoint string, params url.Values, out any) error {
	client, err := c.apiClient(ctx)
	if err != nil {
		return err
	}

	u := c.apiBase + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build strava request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("strava request %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("strava %s returned %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode strava %s: %w", endpoint, err)
	}
	return nil
}

// summaryActivity is the subset of Strava's summary activity payload
// the rollups need.
type summaryActivity struct {
	ID             int64   `json:"id"`
	Type           string  `json:"type"`
	SportType      string  `json:"sport_type"`
	Distance       float64 `json:"distance"`
	MovingTime     int     `json:"moving_time"`
	StartDateLocal string  `json:"start_date_local"`
}

func (a summaryActivity) isRun() bool {
	return a.Type == "Run" || a.SportType == "Run"
}

// detailActivity is Strava's detailed activity payload.
type detailActivity struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Distance           float64    `json:"distance"`
	MovingTime         int        `json:"moving_time"`
	TotalElevationGain float64    `json:"total_elevation_gain"`
	AverageSpeed       float64    `json:"average_speed"`
	StartDateLocal     string     `json:"start_date_local"`
	StartLatLng        []float64  `json:"start_latlng"`
	WorkoutType        *int       `json:"workout_type"`
	Calories           float64    `json:"calories"`
	SufferScore        *float64   `json:"suffer_score"`
	HasHeartrate       bool       `json:"has_heartrate"`
	AverageHeartrate   float64    `json:"average_heartrate"`
	MaxHeartrate       float64    `json:"max_heartrate"`
	AverageCadence     float64    `json:"average_cadence"`
	DeviceName         string     `json:"device_name"`
	SplitsStandard     []rawSplit `json:"splits_standard"`
	SplitsMetric       []rawSplit `json:"splits_metric"`
	Gear               *struct {
		Name string `json:"name"`
	} `json:"gear"`
	Map *struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

type rawSplit struct {
	Split               int     `json:"split"`
	Distance            float64 `json:"distance"`
	MovingTime          int     `json:"moving_time"`
	AverageSpeed        float64 `json:"average_speed"`
	ElevationDifference float64 `json:"elevation_difference"`
}

// RecentActivities fetches the most recent count runs with full
// detail, newest first. Non-run activities are filtered out; extra
// items are requested to compensate.
func (c *Client) RecentActivities(ctx context.Context, count, page int) ([]models.Activity, error) {
	if count <= 0 {
		count = 10
	}
	if page <= 0 {
		page = 1
	}
	key := fmt.Sprintf("recent_%d_p%d", count, page)
	if v, ok := c.cache.Get(key, activityListTTL); ok {
		return v.([]models.Activity), nil
	}

	params := url.Values{}
	params.Set("per_page", fmt.Sprint(count*2))
	params.Set("page", fmt.Sprint(page))

	var raw []summaryActivity
	if err := c.apiGet(ctx, "/athlete/activities", params, &raw); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, 0, count)
	for _, a := range raw {
		if !a.isRun() {
			continue
		}
		if len(activities) >= count {
			break
		}
		detail, err := c.ActivityDetail(ctx, a.ID)
		if err != nil {
			c.log.Warn("activity_detail_failed",
				zap.Int64("activity_id", a.ID), zap.Error(err))
			continue
		}
		activities = append(activities, detail)
	}

	c.cache.Set(key, activities)
	return activities, nil
}

// ActivityDetail fetches one activity with splits, shaped for the
// dashboard.
func (c *Client) ActivityDetail(ctx context.Context, id int64) (models.Activity, error) {
	key := fmt.Sprintf("activity_%d", id)
	if v, ok := c.cache.Get(key, activityDetailTTL); ok {
		return v.(models.Activity), nil
	}

	var a detailActivity
	if err := c.apiGet(ctx, fmt.Sprintf("/activities/%d", id), nil, &a); err != nil {
		return models.Activity{}, err
	}

	activity := c.transformDetail(ctx, a)
	c.cache.Set(key, activity)
	return activity, nil
}

func (c *Client) transformDetail(ctx context.Context, a detailActivity) models.Activity {
	raw := a.SplitsStandard
	if len(raw) == 0 {
		raw = a.SplitsMetric
	}
	splits := make([]models.Split, 0, len(raw))
	for i, s := range raw {
		num := s.Split
		if num == 0 {
			num = i + 1
		}
		elevFt := 0
		if s.ElevationDifference != 0 {
			elevFt = MetersToFeet(s.ElevationDifference)
		}
		elevStr := fmt.Sprintf("%dft", elevFt)
		if elevFt >= 0 {
			elevStr = fmt.Sprintf("+%dft", elevFt)
		}
		splits = append(splits, models.Split{
			Mile:        num,
			Pace:        SplitPace(s.AverageSpeed),
			Elevation:   elevStr,
			DistanceM:   s.Distance,
			MovingTimeS: s.MovingTime,
		})
	}

	title := a.Name
	if title == "" {
		title = "Run"
	}
	shoe := "Unknown"
	if a.Gear != nil && a.Gear.Name != "" {
		shoe = a.Gear.Name
	}

	var effort *int
	if a.SufferScore != nil {
		e := int(*a.SufferScore)
		effort = &e
	}
	var avgHR, maxHR, cadence *int
	if a.HasHeartrate && a.AverageHeartrate > 0 {
		v := roundInt(a.AverageHeartrate)
		avgHR = &v
	}
	if a.HasHeartrate && a.MaxHeartrate > 0 {
		v := roundInt(a.MaxHeartrate)
		maxHR = &v
	}
	if a.AverageCadence > 0 {
		// Strava reports single-leg cadence; double for steps/min.
		v := roundInt(a.AverageCadence * 2)
		cadence = &v
	}

	var polyline string
	if a.Map != nil {
		polyline = a.Map.SummaryPolyline
	}
	var city string
	if c.geo != nil && len(a.StartLatLng) >= 2 {
		city = c.geo.Reverse(ctx, a.StartLatLng[0], a.StartLatLng[1])
	}

	miles := MetersToMiles(a.Distance)
	return models.Activity{
		ID:             a.ID,
		Title:          title,
		Description:    a.Description,
		Date:           FormatDate(a.StartDateLocal, c.loc),
		Distance:       fmt.Sprintf("%.1f mi", miles),
		DistanceMi:     miles,
		Pace:           SpeedToPace(a.AverageSpeed),
		MovingTime:     FormatDuration(a.MovingTime),
		Elevation:      fmt.Sprintf("%d ft", MetersToFeet(a.TotalElevationGain)),
		Shoe:           shoe,
		Device:         a.DeviceName,
		RunType:        RunTypeLabel(a.WorkoutType),
		Sport:          "run",
		Splits:         splits,
		Calories:       a.Calories,
		Effort:         effort,
		AvgHeartRate:   avgHR,
		MaxHeartRate:   maxHR,
		AvgCadence:     cadence,
		StartDateLocal: a.StartDateLocal,
		Polyline:       polyline,
		City:           city,
	}
}

// weekActivities fetches the summary activities between start and end,
// filtered to runs.
func (c *Client) weekActivities(ctx context.Context, start, end time.Time) ([]summaryActivity, error) {
	params := url.Values{}
	params.Set("after", fmt.Sprint(start.Unix()))
	params.Set("before", fmt.Sprint(end.Unix()))
	params.Set("per_page", "50")

	var raw []summaryActivity
	if err := c.apiGet(ctx, "/athlete/activities", params, &raw); err != nil {
		return nil, err
	}
	runs := raw[:0]
	for _, a := range raw {
		if a.isRun() {
			runs = append(runs, a)
		}
	}
	return runs, nil
}

// CurrentWeekSummary builds the Monday–Sunday day bubbles, weekly
// total, and goal for the week containing now.
func (c *Client) CurrentWeekSummary(ctx context.Context, goalMi float64) (models.WeekSummary, error) {
	if v, ok := c.cache.Get("current_week_summary", activityListTTL); ok {
		summary := v.(models.WeekSummary)
		summary.GoalMi = goalMi
		return summary, nil
	}

	now := c.clock().In(c.loc)
	monday, sunday := timeutil.WeekBounds(now)

	runs, err := c.weekActivities(ctx, monday, sunday)
	if err != nil {
		return models.WeekSummary{}, err
	}

	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	days := make([]models.WeekDay, 0, 7)
	var totalMi float64
	for i := 0; i < 7; i++ {
		dayDate := monday.AddDate(0, 0, i)
		var dayMiles float64
		for _, a := range runs {
			t, ok := models.ParseLocalTime(a.StartDateLocal, c.loc)
			if !ok {
				continue
			}
			if timeutil.SameDay(t, dayDate) {
				dayMiles += MetersToMiles(a.Distance)
			}
		}
		dayMiles = round1(dayMiles)
		totalMi += dayMiles
		sport := ""
		if dayMiles > 0 {
			sport = "run"
		}
		days = append(days, models.WeekDay{
			Day:   dayNames[i],
			Date:  dayDate.Day(),
			Miles: dayMiles,
			Sport: sport,
			Today: timeutil.SameDay(dayDate, now),
		})
	}

	summary := models.WeekSummary{
		WeekDays: days,
		TotalMi:  round1(totalMi),
		GoalMi:   goalMi,
	}
	c.cache.Set("current_week_summary", summary)
	return summary, nil
}

// PastWeeks builds summaries for the count weeks before the current
// one, most recent first.
func (c *Client) PastWeeks(ctx context.Context, count int) ([]models.PastWeek, error) {
	if count <= 0 {
		count = 3
	}
	key := fmt.Sprintf("past_weeks_%d", count)
	if v, ok := c.cache.Get(key, activityListTTL); ok {
		return v.([]models.PastWeek), nil
	}

	now := c.clock().In(c.loc)
	currentMonday, _ := timeutil.WeekBounds(now)

	dayAbbrevs := []string{"M", "T", "W", "Th", "F", "Sa", "Su"}
	weeks := make([]models.PastWeek, 0, count)
	for w := 1; w <= count; w++ {
		weekStart := currentMonday.AddDate(0, 0, -7*w)
		weekEnd := weekStart.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)

		runs, err := c.weekActivities(ctx, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}

		days := make([]models.DayMiles, 0, 7)
		var totalMiles float64
		var totalSeconds int
		for i := 0; i < 7; i++ {
			dayDate := weekStart.AddDate(0, 0, i)
			var dayMiles float64
			for _, a := range runs {
				t, ok := models.ParseLocalTime(a.StartDateLocal, c.loc)
				if !ok {
					continue
				}
				if timeutil.SameDay(t, dayDate) {
					dayMiles += MetersToMiles(a.Distance)
					totalSeconds += a.MovingTime
				}
			}
			dayMiles = round1(dayMiles)
			totalMiles += dayMiles
			days = append(days, models.DayMiles{Day: dayAbbrevs[i], Miles: dayMiles})
		}

		weeks = append(weeks, models.PastWeek{
			Label: fmt.Sprintf("%s – %s",
				formatMonthDay(weekStart), formatMonthDay(weekEnd)),
			Miles: round1(totalMiles),
			Time:  FormatDuration(totalSeconds),
			Days:  days,
		})
	}

	c.cache.Set(key, weeks)
	return weeks, nil
}

// athletePayload is the subset of Strava's athlete payload the profile
// card needs.
type athletePayload struct {
	ID                    int64  `json:"id"`
	Firstname             string `json:"firstname"`
	Lastname              string `json:"lastname"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	ProfileMedium         string `json:"profile_medium"`
	MeasurementPreference string `json:"measurement_preference"`
	Shoes                 []struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Distance float64 `json:"distance"`
	} `json:"shoes"`
}

// Profile fetches the athlete profile card: name, location, YTD run
// mileage, and shoes sorted by mileage.
func (c *Client) Profile(ctx context.Context, shoeMaxMiles map[string]float64) (models.Profile, error) {
	if v, ok := c.cache.Get("profile", activityListTTL); ok {
		return v.(models.Profile), nil
	}

	var athlete athletePayload
	if err := c.apiGet(ctx, "/athlete", nil, &athlete); err != nil {
		return models.Profile{}, err
	}

	var stats struct {
		YTDRunTotals struct {
			Distance float64 `json:"distance"`
		} `json:"ytd_run_totals"`
	}
	if err := c.apiGet(ctx, fmt.Sprintf("/athletes/%d/stats", athlete.ID), nil, &stats); err != nil {
		return models.Profile{}, err
	}

	shoes := make([]models.Shoe, 0, len(athlete.Shoes))
	for _, s := range athlete.Shoes {
		maxMi := float64(models.DefaultShoeMaxMiles)
		if m, ok := shoeMaxMiles[s.ID]; ok && m > 0 {
			maxMi = m
		}
		shoes = append(shoes, models.Shoe{
			ID:    s.ID,
			Name:  s.Name,
			Miles: MetersToMiles(s.Distance),
			Max:   maxMi,
		})
	}
	sort.Slice(shoes, func(i, j int) bool { return shoes[i].Miles > shoes[j].Miles })

	profile := models.Profile{
		Name:                  strings.TrimSpace(athlete.Firstname + " " + athlete.Lastname),
		City:                  athlete.City,
		State:                 athlete.State,
		Avatar:                athlete.ProfileMedium,
		YTDMiles:              MetersToMiles(stats.YTDRunTotals.Distance),
		Shoes:                 shoes,
		MeasurementPreference: athlete.MeasurementPreference,
	}

	c.cache.Set("profile", profile)
	return profile, nil
}

// formatMonthDay renders "Feb 2" without a zero-padded day.
func formatMonthDay(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Format("Jan"), t.Day())
}
