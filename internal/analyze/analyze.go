// Package analyze derives lead profile facts from a prospect's public
// footprint: their website and any ads they are running.
package analyze

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadflow-cli/internal/leaderr"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/pkg/adlibrary"
	"github.com/sells-group/leadflow-cli/pkg/sitefetch"
)

// Result is the outcome of a prospect analysis. ManualResearch is set when
// the ad-library collaborator was unavailable and a human should fill the
// gap; it is a normal outcome, not an error.
type Result struct {
	Patch          model.ProfilePatch  `json:"patch"`
	Snapshot       *sitefetch.Snapshot `json:"snapshot,omitempty"`
	Ads            []adlibrary.Ad      `json:"ads,omitempty"`
	PricingVisible bool                `json:"pricing_visible"`
	ManualResearch bool                `json:"manual_research"`
}

// Analyzer runs site and ad-library lookups for a prospect.
type Analyzer struct {
	fetcher sitefetch.Client
	ads     adlibrary.Client
}

// New creates an Analyzer. Either collaborator may be nil, which skips
// that source.
func New(fetcher sitefetch.Client, ads adlibrary.Client) *Analyzer {
	return &Analyzer{fetcher: fetcher, ads: ads}
}

// Analyze fetches the prospect's site and searches the ad library
// concurrently, then folds what it learned into a profile patch. A site
// fetch failure only clears hasWebsite; an ad-library failure flags the
// result for manual research. Neither propagates as an error.
func (a *Analyzer) Analyze(ctx context.Context, url, advertiser string) (*Result, error) {
	if url == "" && advertiser == "" {
		return nil, leaderr.NewInputError("url", "url or advertiser is required")
	}

	res := &Result{}
	g, gCtx := errgroup.WithContext(ctx)

	var (
		snap    *sitefetch.Snapshot
		ads     *adlibrary.SearchResult
		siteErr error
		adErr   error
	)

	if url != "" && a.fetcher != nil {
		g.Go(func() error {
			snap, siteErr = a.fetcher.Fetch(gCtx, url)
			if siteErr != nil {
				zap.L().Warn("analyze: site fetch failed",
					zap.String("url", url),
					zap.Error(siteErr),
				)
			}
			return nil
		})
	}

	if advertiser != "" && a.ads != nil {
		g.Go(func() error {
			ads, adErr = a.ads.Search(gCtx, advertiser)
			if adErr != nil {
				zap.L().Warn("analyze: ad library search failed",
					zap.String("advertiser", advertiser),
					zap.Error(adErr),
				)
			}
			return nil
		})
	}

	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()

	if snap != nil {
		res.Snapshot = snap
		res.PricingVisible = len(snap.Prices) > 0
		applySnapshot(&res.Patch, url, snap)
	} else if url != "" {
		hasSite := false
		res.Patch.HasWebsite = &hasSite
	}

	switch {
	case adErr != nil:
		res.ManualResearch = true
	case ads != nil:
		res.Ads = ads.Ads
		applyAds(&res.Patch, ads.Ads)
	}

	return res, nil
}

// applySnapshot folds site facts into the patch.
func applySnapshot(patch *model.ProfilePatch, url string, snap *sitefetch.Snapshot) {
	hasSite := true
	patch.HasWebsite = &hasSite

	if d := domainOf(url); d != "" {
		patch.Domain = &d
	}
}

// applyAds marks the ad platforms the prospect is active on.
func applyAds(patch *model.ProfilePatch, ads []adlibrary.Ad) {
	var fb, goog bool
	for _, ad := range ads {
		if !ad.Active {
			continue
		}
		switch strings.ToLower(ad.Platform) {
		case "facebook", "instagram", "meta":
			fb = true
		case "google", "youtube":
			goog = true
		}
	}
	if fb {
		patch.HasFacebookAds = &fb
	}
	if goog {
		patch.HasGoogleAds = &goog
	}
}

// domainOf strips scheme, path and port from a url.
func domainOf(url string) string {
	s := strings.TrimSpace(url)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/:?"); i >= 0 {
		s = s[:i]
	}
	return s
}
