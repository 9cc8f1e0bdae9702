// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/pkg/types"
)

func testClient() *httputil.Client {
	return httputil.NewClient(types.FetchConfig{
		Timeout:       2 * time.Second,
		UserAgent:     "votewallet-test",
		MaxConcurrent: 2,
	}, nil)
}

// swap points *base at url for the duration of the test.
func swap(t *testing.T, base *string, url string) {
	t.Helper()
	old := *base
	*base = url
	t.Cleanup(func() { *base = old })
}

var illinois = types.TierTarget{State: "IL", Name: "Illinois", Tier: 2, Quota: 200, Cities: []string{"Springfield", "Chicago"}}

func TestInterval(t *testing.T) {
	assert.Equal(t, time.Second, Interval(3600))
	assert.Equal(t, 2*time.Second, Interval(1800))
	assert.Equal(t, time.Duration(0), Interval(0))
}

func TestThrottleSpacesConsecutiveCalls(t *testing.T) {
	th := NewThrottle(3600)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, th.Wait(ctx))
	require.NoError(t, th.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestThrottleDisabled(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for range 10 {
		require.NoError(t, th.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottleHonoursCancellation(t *testing.T) {
	th := NewThrottle(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, th.Wait(ctx))
	cancel()
	assert.Error(t, th.Wait(ctx))
}

const nominatimBody = `[
 {"name":"Joe's Cafe","display_name":"Joe's Cafe, 12, Main Street","lat":"39.78","lon":"-89.65",
  "category":"amenity","type":"cafe",
  "address":{"house_number":"12","road":"Main Street","city":"Springfield","state":"Illinois","postcode":"62701"},
  "extratags":{"phone":"+1 217 555 0101","website":"https://joes.example"}},
 {"name":"","display_name":"Corner Pharmacy, 3, Oak Ave","lat":"39.79","lon":"-89.64",
  "category":"amenity","type":"pharmacy","address":{"town":"Springfield"},"extratags":{"contact:phone":"217-555-0102"}},
 {"name":"Third","display_name":"Third","lat":"1","lon":"1","category":"shop","type":"yes","address":{}}
]`

func TestGeodataCollect(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries = append(queries, q.Get("q"))
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "1", q.Get("extratags"))
		assert.Equal(t, "ops@example.com", q.Get("email"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(nominatimBody))
	}))
	defer ts.Close()
	swap(t, &nominatimSearchBase, ts.URL)

	a := NewGeodataAdapter(testClient(), types.GeodataConfig{
		SourceConfig: types.SourceConfig{Enabled: true, Reliability: 0.8},
		Email:        "ops@example.com",
		Keywords:     []string{"cafe", "pharmacy"},
	}, nil)

	got, err := a.Collect(context.Background(), illinois, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"cafe in Springfield, IL", "pharmacy in Springfield, IL"}, queries)

	first := got[0]
	assert.Equal(t, types.KindGeodata, first.Kind)
	assert.Equal(t, "Joe's Cafe", first.Name)
	assert.Equal(t, "cafe", first.Category)
	assert.Equal(t, "12 Main Street", first.Street)
	assert.Equal(t, "Illinois", first.State)
	assert.Equal(t, "62701", first.Zip)
	assert.Equal(t, "+1 217 555 0101", first.Phone)
	assert.Equal(t, "39.78", first.Latitude)

	second := got[1]
	assert.Equal(t, "Corner Pharmacy", second.Name, "falls back to display name")
	assert.Equal(t, "217-555-0102", second.Phone)
	assert.Equal(t, "IL", second.State, "falls back to target state")

	assert.Equal(t, "shop", got[2].Category, "generic type falls back to class")
}

func TestGeodataNeverExceedsQuota(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nominatimBody))
	}))
	defer ts.Close()
	swap(t, &nominatimSearchBase, ts.URL)

	a := NewGeodataAdapter(testClient(), types.GeodataConfig{Keywords: []string{"cafe", "bank", "gym"}}, nil)
	for _, quota := range []int{0, 1, 2, 4, 7} {
		got, err := a.Collect(context.Background(), illinois, quota)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), quota)
	}
}

func TestGeodataAllQueriesFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()
	swap(t, &nominatimSearchBase, ts.URL)

	a := NewGeodataAdapter(testClient(), types.GeodataConfig{Keywords: []string{"cafe"}}, nil)
	got, err := a.Collect(context.Background(), illinois, 10)
	assert.Error(t, err)
	assert.Empty(t, got)
	var se *httputil.StatusError
	assert.ErrorAs(t, err, &se)
}

const wikiBody = `{"query":{"search":[
 {"title":"List of companies based in Illinois","snippet":"a list"},
 {"title":"Acme (company)","snippet":"<span class=\"searchmatch\">Acme</span> is a   retailer headquartered in Chicago"},
 {"title":"Lake Michigan","snippet":"a large lake"},
 {"title":"Walgreens","snippet":"American <span class=\"searchmatch\">company</span> that operates pharmacy stores"}
]}}`

func TestEncyclopedicCollect(t *testing.T) {
	var searches []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("list"))
		searches = append(searches, r.URL.Query().Get("srsearch"))
		w.Write([]byte(wikiBody))
	}))
	defer ts.Close()
	swap(t, &wikipediaAPIBase, ts.URL)

	a := NewEncyclopedicAdapter(testClient(), types.SourceConfig{Reliability: 0.5}, nil)
	got, err := a.Collect(context.Background(), illinois, 10)
	require.NoError(t, err)

	assert.Contains(t, searches, "companies based in Illinois")
	assert.Contains(t, searches, "Springfield Illinois businesses")

	require.Len(t, got, 2, "duplicates across phrases are emitted once")
	assert.Equal(t, "Acme", got[0].Name)
	assert.Equal(t, "retail", got[0].Category)
	assert.Equal(t, "Acme is a retailer headquartered in Chicago", got[0].Description)
	assert.Equal(t, encyclopedicCeiling, got[0].QualityCeiling)
	assert.Equal(t, "IL", got[0].State)
	assert.Equal(t, "Walgreens", got[1].Name)
	assert.Equal(t, "pharmacy", got[1].Category)
}

func TestCandidateName(t *testing.T) {
	name, ok := candidateName("Target Corporation (retailer)")
	assert.True(t, ok)
	assert.Equal(t, "Target Corporation", name)

	_, ok = candidateName("List of restaurants in Chicago")
	assert.False(t, ok)
	_, ok = candidateName("Acme (disambiguation)")
	assert.False(t, ok)
}

func TestCuratedBuiltinFiltersByState(t *testing.T) {
	a, err := NewCuratedAdapter(types.CuratedConfig{SourceConfig: types.SourceConfig{Reliability: 0.95}})
	require.NoError(t, err)
	require.Positive(t, a.Len())

	tx := types.TierTarget{State: "TX", Tier: 1, Quota: 500}
	got, err := a.Collect(context.Background(), tx, 500)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, "TX", r.State)
		assert.Equal(t, types.KindCurated, r.Kind)
	}

	got, err = a.Collect(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCuratedFromFile(t *testing.T) {
	path := t.TempDir() + "/list.yaml"
	writeFile(t, path, "businesses:\n  - name: Local Hardware\n    category: hardware\n    city: Boise\n    state: ID\n")

	a, err := NewCuratedAdapter(types.CuratedConfig{File: path})
	require.NoError(t, err)
	got, err := a.Collect(context.Background(), types.TierTarget{State: "id"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Local Hardware", got[0].Name)
	assert.Equal(t, "curated", got[0].Source)
}

func TestCuratedBadFile(t *testing.T) {
	_, err := NewCuratedAdapter(types.CuratedConfig{File: t.TempDir() + "/missing.yaml"})
	assert.Error(t, err)
}

func TestPatternCollectDeterministic(t *testing.T) {
	a := NewPatternAdapter(types.SourceConfig{Reliability: 0.2})
	first, err := a.Collect(context.Background(), illinois, 5)
	require.NoError(t, err)
	second, err := a.Collect(context.Background(), illinois, 5)
	require.NoError(t, err)

	require.Len(t, first, 5)
	assert.Equal(t, first, second)
	assert.Equal(t, "Starbucks", first[0].Name)
	assert.Equal(t, "Springfield", first[0].City)
	assert.Equal(t, patternCeiling, first[0].QualityCeiling)

	all, err := a.Collect(context.Background(), illinois, 1000)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultBrands)*len(illinois.Cities))
}

const fecBody = `{"results":[
 {"contribution_receipt_amount":30000,"report_year":2024,"committee":{"name":"DNC Services Corp","party":"DEM"}},
 {"contribution_receipt_amount":20000,"report_year":2024,"committee":{"name":"DNC Services Corp","party":"DEM"}},
 {"contribution_receipt_amount":-500,"report_year":2024,"committee":{"name":"Refund PAC","party":"REP"}},
 {"contribution_receipt_amount":1000,"report_year":2018,"committee":{"name":"Old PAC","party":"REP"}},
 {"contribution_receipt_amount":2500,"report_year":2022,"committee":{"name":"Sierra Club Political Committee","party":""}}
]}`

func TestDonationRegistryEvidence(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Acme", q.Get("contributor_employer"))
		assert.Equal(t, "secret", q.Get("api_key"))
		w.Write([]byte(fecBody))
	}))
	defer ts.Close()
	swap(t, &fecScheduleABase, ts.URL)

	d := NewDonationRegistry(testClient(), types.DonationConfig{APIKey: "secret", MinYear: 2020})
	ev, err := d.Evidence(context.Background(), types.CanonicalBusiness{BusinessCandidate: types.BusinessCandidate{Name: "Acme"}})
	require.NoError(t, err)

	require.Len(t, ev.Donations, 2)
	assert.Equal(t, "DNC Services Corp", ev.Donations[0].Organization)
	assert.InDelta(t, 50000, ev.Donations[0].Amount, 1e-9)
	assert.Equal(t, types.LeanLiberal, ev.Donations[0].Lean)
	assert.Equal(t, types.LeanUnset, ev.Donations[1].Lean, "unknown party is left for the calculator")
	assert.Equal(t, "donations", ev.Donations[1].Source)
}

func TestDonationRegistryDemoKey(t *testing.T) {
	d := NewDonationRegistry(testClient(), types.DonationConfig{})
	assert.Equal(t, "DEMO_KEY", d.APIKey)
}

const rssBody = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Business news</title>
<item><title>Acme pledges to cut carbon emissions</title>
<description>&lt;p&gt;Acme will move to &lt;b&gt;renewable&lt;/b&gt; power by 2030.&lt;/p&gt;</description>
<link>https://news.example/acme-climate</link>
<pubDate>Mon, 02 Sep 2024 10:00:00 GMT</pubDate></item>
<item><title>Acme reports quarterly earnings</title><description>Revenue rose.</description></item>
<item><title>Other firm backs climate bill</title><description>No mention.</description></item>
</channel></rss>`

func TestStatementFeedEvidence(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssBody))
	}))
	defer ts.Close()

	s := NewStatementFeed(testClient(), types.StatementConfig{Feeds: []string{ts.URL}}, nil)
	ev, err := s.Evidence(context.Background(), types.CanonicalBusiness{BusinessCandidate: types.BusinessCandidate{Name: "Acme"}})
	require.NoError(t, err)

	require.Len(t, ev.Statements, 1)
	st := ev.Statements[0]
	assert.Equal(t, types.LeanGreen, st.Lean)
	assert.InDelta(t, 0.6, st.Confidence, 1e-9)
	assert.Equal(t, "https://news.example/acme-climate", st.URL)
	assert.Equal(t, 2024, st.PublishedAt.Year())
	assert.Contains(t, st.Text, "renewable power")
}

func TestStatementFeedAllFeedsFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer ts.Close()

	s := NewStatementFeed(testClient(), types.StatementConfig{Feeds: []string{ts.URL}}, nil)
	_, err := s.Evidence(context.Background(), types.CanonicalBusiness{BusinessCandidate: types.BusinessCandidate{Name: "Acme"}})
	assert.Error(t, err)
}

func TestAdaptersDeclaredOrder(t *testing.T) {
	cfg := types.DefaultPipelineConfig().Sources
	as, err := Adapters(testClient(), cfg, nil)
	require.NoError(t, err)
	var names []string
	for _, a := range as {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"curated", "geodata", "encyclopedic", "pattern"}, names)

	cfg.Statements.Enabled = true
	cfg.Statements.Feeds = []string{"https://feeds.example/rss"}
	assert.Len(t, EvidenceSources(testClient(), cfg, nil), 2)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
