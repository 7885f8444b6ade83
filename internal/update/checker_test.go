package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/werkbank/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "werkbank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		candidate string
		current   string
		want      bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v1.2.0", "1.2.0", false},
		{"1.2.0", "v1.3.0", false},
		{"2.0", "1.9.9", true},
		{"1.2.1", "1.2", true},
		{"1.2.0-rc1", "1.1.0", true},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNewer(tt.candidate, tt.current),
			"IsNewer(%q, %q)", tt.candidate, tt.current)
	}
}

func TestCheckFetchesAndRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "v1.5.0"}`))
	}))
	defer srv.Close()

	st := openTestStore(t)
	c := NewChecker(srv.URL, "1.0.0", time.Hour, st)

	result := c.Check(context.Background())
	assert.True(t, result.Success)
	assert.False(t, result.Skipped)
	assert.Equal(t, "v1.5.0", result.LatestVersion)
	assert.True(t, result.UpdateAvailable)

	last, err := st.LastUpdateCheck()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "v1.5.0", last.LatestVersion)
}

func TestCheckSkipsWithinInterval(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"tag_name": "v2.0.0"}`))
	}))
	defer srv.Close()

	st := openTestStore(t)
	c := NewChecker(srv.URL, "2.0.0", time.Hour, st)

	first := c.Check(context.Background())
	assert.True(t, first.Success)
	assert.False(t, first.Skipped)

	second := c.Check(context.Background())
	assert.True(t, second.Success)
	assert.True(t, second.Skipped)
	assert.Equal(t, "v2.0.0", second.LatestVersion)
	assert.False(t, second.UpdateAvailable)

	assert.Equal(t, 1, calls)
}

func TestCheckReportsFeedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	st := openTestStore(t)
	c := NewChecker(srv.URL, "1.0.0", time.Hour, st)

	result := c.Check(context.Background())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "status 403")

	// A failed probe must not throttle the next one.
	last, err := st.LastUpdateCheck()
	require.NoError(t, err)
	assert.Nil(t, last)
}
