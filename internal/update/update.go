// Package update backs `cryptodigest version --check`.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// DefaultReleasesURL is the latest-release endpoint for this project.
const DefaultReleasesURL = "https://api.github.com/repos/cryptodigest/cryptodigest/releases/latest"

const checkTimeout = 5 * time.Second

// Result describes a release newer than the running binary.
type Result struct {
	// LatestVersion has no leading "v".
	LatestVersion string
	// URL is the release page, empty if the endpoint did not send one.
	URL string
}

type latestRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check asks releasesURL for the latest release and compares its tag with
// currentVersion. It returns nil when the binary is current or when the
// lookup fails for any reason, so a scheduled run never depends on GitHub.
func Check(ctx context.Context, client *http.Client, releasesURL, currentVersion string) *Result {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	rel, ok := fetchLatest(ctx, client, releasesURL)
	if !ok {
		return nil
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	if latest == "" || latest == strings.TrimPrefix(currentVersion, "v") {
		return nil
	}
	return &Result{LatestVersion: latest, URL: rel.HTMLURL}
}

func fetchLatest(ctx context.Context, client *http.Client, releasesURL string) (latestRelease, bool) {
	var rel latestRelease
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return rel, false
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "cryptodigest")

	resp, err := client.Do(req)
	if err != nil {
		return rel, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rel, false
	}
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return rel, false
	}
	return rel, true
}
