// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/pkg/types"
)

// fecScheduleABase is the itemized-receipts endpoint. Declared as a var so
// tests can substitute an httptest server.
var fecScheduleABase = "https://api.open.fec.gov/v1/schedules/schedule_a/"

const fecPageSize = 100

// partyLeans maps committee party codes onto axes. Unlisted codes leave the
// lean unset for the calculator to resolve.
var partyLeans = map[string]types.Lean{
	"DEM": types.LeanLiberal,
	"REP": types.LeanConservative,
	"LIB": types.LeanLibertarian,
	"GRE": types.LeanGreen,
}

// DonationRegistry finds political contributions made by a business's
// employees and PACs.
type DonationRegistry struct {
	Base
	Client  *httputil.Client
	APIKey  string
	MinYear int
}

// NewDonationRegistry builds the source from cfg. An empty API key uses
// the registry's shared demo key.
func NewDonationRegistry(client *httputil.Client, cfg types.DonationConfig) *DonationRegistry {
	key := cfg.APIKey
	if key == "" {
		key = "DEMO_KEY"
	}
	return &DonationRegistry{
		Base:    NewBase("donations", cfg.SourceConfig),
		Client:  client,
		APIKey:  key,
		MinYear: cfg.MinYear,
	}
}

type fecResponse struct {
	Results []struct {
		Amount     float64 `json:"contribution_receipt_amount"`
		ReportYear int     `json:"report_year"`
		Committee  struct {
			Name  string `json:"name"`
			Party string `json:"party"`
		} `json:"committee"`
	} `json:"results"`
}

// Evidence returns one DonationEvidence per recipient committee and year,
// with amounts summed. Refunds and years before MinYear are dropped.
func (d *DonationRegistry) Evidence(ctx context.Context, business types.CanonicalBusiness) (types.Evidence, error) {
	if err := d.Wait(ctx); err != nil {
		return types.Evidence{}, err
	}
	params := url.Values{
		"api_key":              {d.APIKey},
		"contributor_employer": {business.Name},
		"per_page":             {strconv.Itoa(fecPageSize)},
		"sort":                 {"-contribution_receipt_date"},
	}
	if d.MinYear > 0 {
		params.Set("min_date", fmt.Sprintf("%d-01-01", d.MinYear))
	}

	var resp fecResponse
	if err := d.Client.GetJSON(ctx, fecScheduleABase+"?"+params.Encode(), &resp); err != nil {
		return types.Evidence{}, fmt.Errorf("donation search for %q: %w", business.Name, err)
	}

	type groupKey struct {
		org  string
		year int
	}
	index := make(map[groupKey]int)
	var ev types.Evidence
	for _, r := range resp.Results {
		org := strings.TrimSpace(r.Committee.Name)
		if org == "" || r.Amount <= 0 || (d.MinYear > 0 && r.ReportYear < d.MinYear) {
			continue
		}
		k := groupKey{org, r.ReportYear}
		if i, ok := index[k]; ok {
			ev.Donations[i].Amount += r.Amount
			continue
		}
		index[k] = len(ev.Donations)
		ev.Donations = append(ev.Donations, types.DonationEvidence{
			Organization: org,
			Amount:       r.Amount,
			Lean:         partyLeans[strings.ToUpper(r.Committee.Party)],
			Year:         r.ReportYear,
			Source:       d.Name(),
		})
	}
	return ev, nil
}
