package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/desertthunder/scanarr/internal/shared"
)

// ConfigProbe is the outcome of probing one Lidarr configuration endpoint.
type ConfigProbe struct {
	Name       string `json:"name"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code,omitempty"`
	Reachable  bool   `json:"reachable"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// Summary renders the probe as a single human-readable line.
func (p ConfigProbe) Summary() string {
	switch {
	case p.OK:
		return fmt.Sprintf("✅ %s OK", p.Name)
	case !p.Reachable:
		return fmt.Sprintf("⚠️ Error checking %s: %s", p.Name, p.Error)
	case p.StatusCode < 200 || p.StatusCode >= 300:
		return fmt.Sprintf("❌ %s request failed with %d: %s", p.Name, p.StatusCode, p.Error)
	default:
		return fmt.Sprintf("❌ %s misconfigured: %s", p.Name, p.Error)
	}
}

// ConfigReport aggregates the configuration probes.
type ConfigReport struct {
	Probes []ConfigProbe `json:"probes"`
	OK     bool          `json:"ok"`
}

// Failures returns the probes that did not pass.
func (r ConfigReport) Failures() []ConfigProbe {
	var failed []ConfigProbe
	for _, p := range r.Probes {
		if !p.OK {
			failed = append(failed, p)
		}
	}
	return failed
}

type lidarrRootFolder struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

type lidarrProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CheckConfig probes the root folder, quality profile and metadata profile endpoints.
//
// Each probe fails when the endpoint is unreachable, answers with a non-2xx status, or does
// not list the root folder path or profile id this service registers artists with.
func (l *LidarrService) CheckConfig(ctx context.Context) ConfigReport {
	probes := []ConfigProbe{
		l.probe(ctx, "Root folders", "/rootfolder", func(resp *APIResponse) error {
			var folders []lidarrRootFolder
			if err := resp.Decode(&folders); err != nil {
				return err
			}
			paths := make([]string, len(folders))
			for i, f := range folders {
				paths[i] = strings.TrimRight(f.Path, "/")
			}
			if !slices.Contains(paths, strings.TrimRight(l.cfg.RootFolderPath, "/")) {
				return fmt.Errorf("root folder %q not found (available: %s)", l.cfg.RootFolderPath, strings.Join(paths, ", "))
			}
			return nil
		}),
		l.probe(ctx, "Quality profiles", "/qualityprofile", profileCheck("quality profile", l.cfg.QualityProfileID)),
		l.probe(ctx, "Metadata profiles", "/metadataprofile", profileCheck("metadata profile", l.cfg.MetadataProfileID)),
	}

	report := ConfigReport{Probes: probes, OK: true}
	for _, p := range probes {
		report.OK = report.OK && p.OK
	}
	return report
}

func (l *LidarrService) probe(ctx context.Context, name, endpoint string, verify func(*APIResponse) error) ConfigProbe {
	p := ConfigProbe{Name: name, Endpoint: lidarrAPIPrefix + endpoint}

	resp, err := l.api.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		p.Error = err.Error()
		return p
	}

	p.Reachable = true
	p.StatusCode = resp.StatusCode
	if !resp.OK() {
		p.Error = shared.NewStatusError(lidarrService, name, resp.StatusCode, resp.Body).Body
		return p
	}

	if err := verify(resp); err != nil {
		p.Error = err.Error()
		return p
	}

	p.OK = true
	return p
}

func profileCheck(kind string, id int) func(*APIResponse) error {
	return func(resp *APIResponse) error {
		var profiles []lidarrProfile
		if err := resp.Decode(&profiles); err != nil {
			return err
		}
		names := make([]string, len(profiles))
		for i, p := range profiles {
			if p.ID == id {
				return nil
			}
			names[i] = fmt.Sprintf("%d=%s", p.ID, p.Name)
		}
		return fmt.Errorf("%s %d not found (available: %s)", kind, id, strings.Join(names, ", "))
	}
}
