package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Himachal News</title>
  <item>
    <title>IIT Mandi students win national robotics prize</title>
    <link>https://example.com/robotics</link>
    <description><![CDATA[<p>A <b>great</b> achievement for the campus.</p>]]></description>
    <pubDate>Thu, 02 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Cricket league results</title>
    <link>https://example.com/cricket</link>
    <description>Nothing about the region.</description>
    <pubDate>Fri, 03 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Heavy rain in Mandi Himachal Pradesh</title>
    <link>https://example.com/rain</link>
    <description>Roads closed.</description>
    <pubDate>Sat, 04 May 2024 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQueryKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{`"IIT Mandi" OR "Mandi Himachal Pradesh"`, []string{"iit mandi", "mandi himachal pradesh"}},
		{`monsoon AND landslide`, []string{"monsoon", "landslide"}},
		{`+shimla -tourism`, []string{"shimla", "tourism"}},
		{``, nil},
	}
	for _, tt := range tests {
		got := QueryKeywords(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("QueryKeywords(%q): got %q, want %q", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("QueryKeywords(%q)[%d]: got %q, want %q", tt.query, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML("<p>A <b>great</b>\n   achievement.</p>")
	if got != "A great achievement." {
		t.Errorf("got %q", got)
	}
	if cleanHTML("") != "" {
		t.Error("empty input should stay empty")
	}
}

func TestRSSFetchArticles(t *testing.T) {
	srv := feedServer(t, rssBody, http.StatusOK)
	r := NewRSS(RSSOptions{Feeds: []Feed{{Name: "Test Feed", URL: srv.URL}}, Logger: quietLogger()})

	arts, err := r.FetchArticles(context.Background(), `"IIT Mandi" OR "Mandi Himachal Pradesh"`, 0)
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("got %d articles, want 2 matching the query", len(arts))
	}
	// Newest first.
	if arts[0].URL != "https://example.com/rain" || arts[1].URL != "https://example.com/robotics" {
		t.Errorf("order: got %s, %s", arts[0].URL, arts[1].URL)
	}
	if arts[1].Description != "A great achievement for the campus." {
		t.Errorf("Description: got %q", arts[1].Description)
	}
	if arts[1].Source != "Test Feed" {
		t.Errorf("Source: got %q", arts[1].Source)
	}
	if want := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC); !arts[1].PublishedAt.Equal(want) {
		t.Errorf("PublishedAt: got %v", arts[1].PublishedAt)
	}
}

func TestRSSSkipsFailedFeeds(t *testing.T) {
	good := feedServer(t, rssBody, http.StatusOK)
	bad := feedServer(t, "gone", http.StatusNotFound)
	r := NewRSS(RSSOptions{
		Feeds:  []Feed{{Name: "Bad", URL: bad.URL}, {Name: "Good", URL: good.URL}},
		Logger: quietLogger(),
	})

	arts, err := r.FetchArticles(context.Background(), "mandi", 1)
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(arts) != 1 {
		t.Errorf("got %d articles, want 1", len(arts))
	}
}

func TestRSSAllFeedsFail(t *testing.T) {
	bad := feedServer(t, "not xml at all", http.StatusOK)
	r := NewRSS(RSSOptions{Feeds: []Feed{{Name: "Broken", URL: bad.URL}}, Logger: quietLogger()})

	if _, err := r.FetchArticles(context.Background(), "mandi", 0); err == nil {
		t.Error("expected error when every feed fails")
	}
}
