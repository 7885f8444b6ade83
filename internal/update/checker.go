package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codefionn/werkbank/internal/logger"
	"github.com/codefionn/werkbank/internal/store"
)

// DefaultEndpoint is the release feed queried for new versions.
const DefaultEndpoint = "https://api.github.com/repos/codefionn/werkbank/releases/latest"

// CheckResult describes one update check, whether it hit the network or
// was satisfied from the recorded history.
type CheckResult struct {
	Success         bool   `json:"success"`
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	Skipped         bool   `json:"skipped"`
	Error           string `json:"error,omitempty"`
}

// Checker polls a release feed for newer versions, throttled by the
// update history in the store.
type Checker struct {
	endpoint string
	version  string
	interval time.Duration
	store    *store.Store
	client   *http.Client
}

// NewChecker builds a checker for the given running version. An empty
// endpoint falls back to the project release feed.
func NewChecker(endpoint, version string, interval time.Duration, st *store.Store) *Checker {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Checker{
		endpoint: endpoint,
		version:  version,
		interval: interval,
		store:    st,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type releaseInfo struct {
	TagName string `json:"tag_name"`
}

// Check returns the latest known version, going to the network only when
// the last recorded check is older than the configured interval.
func (c *Checker) Check(ctx context.Context) *CheckResult {
	result := &CheckResult{CurrentVersion: c.version}

	if last, err := c.store.LastUpdateCheck(); err == nil && last != nil {
		checkedAt, perr := time.Parse(time.RFC3339, last.CheckedAt)
		if perr == nil && time.Since(checkedAt) < c.interval {
			result.Success = true
			result.Skipped = true
			result.LatestVersion = last.LatestVersion
			result.UpdateAvailable = IsNewer(last.LatestVersion, c.version)
			return result
		}
	}

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		logger.Warn("update: check failed: %v", err)
		result.Error = err.Error()
		return result
	}

	if err := c.store.RecordUpdateCheck(latest); err != nil {
		logger.Warn("update: failed to record check: %v", err)
	}

	result.Success = true
	result.LatestVersion = latest
	result.UpdateAvailable = IsNewer(latest, c.version)
	return result
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var info releaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to parse release feed: %w", err)
	}
	if info.TagName == "" {
		return "", fmt.Errorf("release feed has no tag name")
	}
	return info.TagName, nil
}

// IsNewer reports whether candidate is a strictly newer version than
// current, comparing dotted numeric fields. A leading "v" is ignored and
// non-numeric fields compare as zero.
func IsNewer(candidate, current string) bool {
	if candidate == "" || current == "" {
		return false
	}

	ca := versionFields(candidate)
	cu := versionFields(current)

	n := len(ca)
	if len(cu) > n {
		n = len(cu)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(ca) {
			a = ca[i]
		}
		if i < len(cu) {
			b = cu[i]
		}
		if a != b {
			return a > b
		}
	}
	return false
}

func versionFields(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}

	parts := strings.Split(v, ".")
	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		fields[i] = n
	}
	return fields
}
