package e2e

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertFile struct {
	Groups []struct {
		Name  string `yaml:"name"`
		Rules []struct {
			Alert string `yaml:"alert"`
			Expr  string `yaml:"expr"`
		} `yaml:"rules"`
	} `yaml:"groups"`
}

var metricName = regexp.MustCompile(`odyssey_[a-z_]+`)

// Every series an alert watches must be exported once the matching event
// happened, otherwise the rule silently never fires.
func TestAlertRulesReferenceExportedMetrics(t *testing.T) {
	dash, s := start(t)

	user := newClient(t, dash.Handler)
	user.login("user@example.com", "user123")
	assert.Equal(t, http.StatusForbidden, user.get("/dashboard/payroll").Code)

	admin := newClient(t, dash.Handler)
	admin.login("admin@example.com", "admin123")
	admin.get("/dashboard/settings")
	s.broken.Store(true)
	res := admin.post("/dashboard/settings/backup", url.Values{})
	require.Equal(t, http.StatusSeeOther, res.Code)
	s.broken.Store(false)

	res = admin.get("/dashboard/settings")
	assert.Contains(t, res.Body.String(), "Failed to start backup")

	scrape := admin.get("/metrics").Body.String()

	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "dashboard.yml"))
	require.NoError(t, err)
	var rules alertFile
	require.NoError(t, yaml.Unmarshal(data, &rules))
	require.NotEmpty(t, rules.Groups)

	for _, group := range rules.Groups {
		for _, rule := range group.Rules {
			names := metricName.FindAllString(rule.Expr, -1)
			require.NotEmpty(t, names, rule.Alert)
			for _, name := range names {
				assert.Contains(t, scrape, name, "alert %s watches %s", rule.Alert, name)
			}
		}
	}
}
