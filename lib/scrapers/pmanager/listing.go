package pmanager

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"tmscout-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SearchFilter describes one transfer search scenario. Zero values mean
// "Any" on the site's search form, so an empty filter is the unfiltered
// recent-listings catch-all. RawQuery, when set, is used verbatim instead
// of compiling the fields (for URLs copied out of the browser).
type SearchFilter struct {
	Name string `json:"name"`

	AgeBelow       int   `json:"age_below"`
	QualityAbove   int   `json:"quality_above"`
	PotentialAbove int   `json:"potential_above"`
	PriceAtMost    int64 `json:"price_at_most"`

	RawQuery string `json:"raw_query"`
}

func anyOr(v string, set bool) string {
	if set {
		return v
	}
	return "Any"
}

// query compiles the filter into the listing endpoint's query string.
// The endpoint wants an operator and an operand per criterion and the
// literal string "Any" for unconstrained ones.
func (f SearchFilter) query() url.Values {
	if f.RawQuery != "" {
		q, err := url.ParseQuery(f.RawQuery)
		if err == nil {
			return q
		}
		slog.Warn("invalid raw search query, compiling fields instead", "scenario", f.Name, "err", err)
	}

	q := url.Values{}
	q.Set("action", "proc_jog")
	q.Set("nome", "")
	q.Set("pos", "0")
	q.Set("nacional", "-1")
	q.Set("pais", "-1")
	q.Set("lado", "-1")
	q.Set("lesionado", "Any")
	q.Set("internacional", "Any")
	q.Set("talento", "Any")
	q.Set("sort", "0")
	q.Set("pv", "1")
	q.Set("pid", "1")

	q.Set("idd_op", "<")
	q.Set("idd", anyOr(strconv.Itoa(f.AgeBelow), f.AgeBelow > 0))
	q.Set("qual_op", ">")
	q.Set("qual", anyOr(strconv.Itoa(f.QualityAbove), f.QualityAbove > 0))
	q.Set("prog_op", ">")
	q.Set("prog", anyOr(strconv.Itoa(f.PotentialAbove), f.PotentialAbove > 0))
	q.Set("pre_op", "<=")
	q.Set("pre", anyOr(strconv.FormatInt(f.PriceAtMost, 10), f.PriceAtMost > 0))

	return q
}

var playerLinkRegex = regexp.MustCompile(`comprar_jog_lista\.asp\?jg_id=(\d+)`)

// Crawl walks the filtered listing endpoint page by page and returns the
// entry ids it saw, oldest page first, deduplicated. The same id showing
// up twice is expected (the site re-ranks listings while we walk), not
// corruption. A page that fails to fetch or parse ends the walk with
// whatever was gathered so far.
func (c *Client) Crawl(ctx context.Context, filter SearchFilter, maxPages int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:Crawl")
	defer span.End()
	span.SetAttributes(
		attribute.String("scenario", filter.Name),
		attribute.Int("max_pages", maxPages),
	)

	if maxPages < 1 {
		return nil, fmt.Errorf("maxPages must be >= 1, got %d", maxPages)
	}

	query := filter.query()
	current := "/procurar.asp?" + query.Encode()

	var ids []string
	seen := map[string]bool{}

	for page := 1; page <= maxPages; page++ {
		doc, err := c.fetchDocument(ctx, current)
		if err != nil {
			slog.WarnContext(ctx, "listing page failed, stopping crawl",
				"scenario", filter.Name, "page", page, "err", err)
			span.SetStatus(codes.Error, "crawl stopped early")
			break
		}

		found := 0
		for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
			groups := playerLinkRegex.FindStringSubmatch(anchor.Href)
			if len(groups) < 2 {
				continue
			}
			id := groups[1]
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			found++
		}
		slog.DebugContext(ctx, "crawled listing page",
			"scenario", filter.Name, "page", page, "new_ids", found)

		next := findNextPageLink(ctx, doc, page+1)
		if next == "" {
			break
		}
		current = c.resolve(next)
	}

	span.SetAttributes(attribute.Int("total_ids", len(ids)))
	return ids, nil
}

// findNextPageLink looks for an anchor explicitly carrying the next
// sequential page number in its query, positional "next" arrows are not
// trusted.
func findNextPageLink(ctx context.Context, doc *goquery.Document, page int) string {
	marker := fmt.Sprintf("&pid=%d", page)
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		if strings.Contains(anchor.Href, marker) {
			return anchor.Href
		}
	}
	return ""
}
