package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/models"
	"newsdesk/pkg/metadata"
	"newsdesk/pkg/utils"
)

// DigestFile is the name of the signed markdown digest inside the index directory.
const DigestFile = "digest.md"

const maxTitleWidth = 80

// Digest is the input of RenderDigest.
type Digest struct {
	Version  string
	Status   models.Status
	Articles []models.Article
	// Top limits the article table; 0 renders none.
	Top int
}

// RenderDigest renders a markdown summary of the status record and the head of
// the latest feed, with aligned tables and a signed metadata block.
func RenderDigest(d Digest, now time.Time) string {
	h := utils.NewStringHelper()

	var sb strings.Builder

	sb.WriteString("# Newsdesk digest\n\n")
	fmt.Fprintf(&sb, "Generated at %s.\n\n", utils.FormatInstant(now))

	sb.WriteString("## Status\n\n")
	sb.WriteString("| Field | Value |\n| --- | --- |\n")
	fmt.Fprintf(&sb, "| ok | %t |\n", d.Status.OK)
	fmt.Fprintf(&sb, "| last_run_iso | %s |\n", cell(h, optional(d.Status.LastRunISO)))
	fmt.Fprintf(&sb, "| last_feed_update | %s |\n", cell(h, optional(d.Status.LastFeedUpdate)))
	fmt.Fprintf(&sb, "| feed_count | %d |\n", d.Status.FeedCount)

	top := d.Articles
	if d.Top < len(top) {
		top = top[:d.Top]
	}

	if len(top) > 0 {
		sb.WriteString("\n## Top articles\n\n")
		sb.WriteString("| # | Published | Relevance | Country | Source | Title |\n")
		sb.WriteString("| --- | --- | --- | --- | --- | --- |\n")

		for i, a := range top {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s |\n",
				i+1,
				cell(h, a.PublishedAt),
				strconv.FormatFloat(a.Relevance, 'f', -1, 64),
				cell(h, a.Country),
				cell(h, a.Source),
				cell(h, h.TruncateString(a.Title, maxTitleWidth)),
			)
		}
	}

	var countries []string
	for _, a := range d.Articles {
		countries = append(countries, a.Country)
	}

	if tally := models.Tally(countries); len(tally) > 0 {
		sb.WriteString("\n## Countries\n\n")
		sb.WriteString("| Country | Articles |\n| --- | --- |\n")

		for _, c := range tally {
			fmt.Fprintf(&sb, "| %s | %d |\n", cell(h, c.Name), c.Count)
		}
	}

	if len(d.Articles) == 0 {
		sb.WriteString("\n_No articles in the latest feed._\n")
	}

	return metadata.Sign(FormatMarkdown(sb.String()), d.Status.OK, d.Version, now)
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}

	return *s
}

// cell flattens text into a single table cell.
func cell(h *utils.StringHelper, s string) string {
	s = h.NormalizeWhitespace(strings.ReplaceAll(s, "|", "/"))
	if s == "" {
		return "-"
	}

	return s
}
