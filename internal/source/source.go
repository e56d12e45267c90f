// Package source discovers candidate tools and AI news from external sites.
package source

import (
	"context"
	"time"

	"github.com/aigcpilot/harvester/internal/models"
)

// Source tags, also used as the classifier's leading hint text.
const (
	TagAIGC        = "AIGC_CN"
	TagIzzi        = "IZZI_CN"
	TagGitHub      = "GITHUB"
	TagProductHunt = "PRODUCTHUNT"
)

// BrowserUA is sent where sites block default client user agents.
const BrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Profile carries the per-source submission defaults.
type Profile struct {
	Tag          string
	Region       string
	Hot          bool
	Rate         float64
	CategorySlug string // empty means classify by keywords
	Limit        int    // 0 means no limit
	Delay        time.Duration
}

// Source turns one external site into discovered items.
type Source interface {
	Profile() Profile
	Discover(ctx context.Context) ([]models.DiscoveredItem, error)
}

func directoryProfile(tag string) Profile {
	return Profile{
		Tag:    tag,
		Region: "Global",
		Hot:    true,
		Rate:   4.9,
		Delay:  2 * time.Second,
	}
}
