package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Column headers on the HUSTOJ rank table.
	userColumn = "用户"
	nameColumn = "昵称"

	// Accepted cells carry cumulative timing text; only the trailing
	// characters form the submission-order marker.
	markerSuffixLen = 8
)

var whitespace = regexp.MustCompile(`\s+`)

// HUSTOJSource scrapes a HUSTOJ contestrank page into participant rows.
type HUSTOJSource struct {
	baseURL   string
	userAgent string
	problems  []string
	idPrefix  string
	idLength  int
	client    *http.Client
	logger    *logger.Logger
}

type HUSTOJConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Problems  []string
	// IDPrefix/IDLength filter out rows that are not tracked participants
	// (other accounts show up on the shared judge).
	IDPrefix string
	IDLength int
}

func NewHUSTOJSource(cfg HUSTOJConfig, log *logger.Logger) *HUSTOJSource {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HUSTOJSource{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		problems:  cfg.Problems,
		idPrefix:  cfg.IDPrefix,
		idLength:  cfg.IDLength,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    log.With("component", "HUSTOJSource"),
	}
}

func (s *HUSTOJSource) Fetch(ctx context.Context, contestID int) ([]models.ParticipantResult, error) {
	url := fmt.Sprintf("%s/contestrank.php?cid=%d", s.baseURL, contestID)
	s.logger.Debug("Fetching contest rank page", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSourceFetch, "failed to build rank page request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSourceFetch, "failed to fetch rank page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(
			apperrors.CodeSourceFetch,
			fmt.Sprintf("rank page returned status %d", resp.StatusCode),
		)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSourceFetch, "failed to parse rank page")
	}

	return s.parse(doc)
}

func (s *HUSTOJSource) parse(doc *goquery.Document) ([]models.ParticipantResult, error) {
	table := doc.Find("table#rank-table").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, apperrors.New(apperrors.CodeSourceFetch, "rank table not found on page")
	}

	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = table.Find("tr").First()
	}

	headers := make([]string, 0)
	headerRow.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, cleanCell(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, apperrors.New(apperrors.CodeSourceFetch, "rank table has no header row")
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}

	results := make([]models.ParticipantResult, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := make(map[string]string, len(headers))
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i < len(headers) {
				cells[headers[i]] = cleanCell(cell.Text())
			}
		})

		id := cells[userColumn]
		if !s.trackedParticipant(id) {
			return
		}

		name := cells[nameColumn]
		if name == "" {
			name = id
		}

		markers := make(map[string]string, len(s.problems))
		for _, label := range s.problems {
			markers[label] = normalizeMarker(cells[label])
		}

		results = append(results, models.ParticipantResult{
			ID:      id,
			Name:    name,
			Markers: markers,
		})
	})

	s.logger.Debug("Parsed rank table", "rows", rows.Length(), "tracked", len(results))

	return results, nil
}

func (s *HUSTOJSource) trackedParticipant(id string) bool {
	if id == "" {
		return false
	}
	if s.idPrefix != "" && !strings.HasPrefix(id, s.idPrefix) {
		return false
	}
	if s.idLength > 0 && len(id) != s.idLength {
		return false
	}
	return true
}

// normalizeMarker maps a rank table cell onto the marker contract: empty
// cell = not attempted, cell starting with '-' (failed attempt counter) =
// attempted, anything else is an accepted submission whose trailing
// characters order first acceptances.
func normalizeMarker(cell string) string {
	if cell == "" {
		return ""
	}
	if strings.HasPrefix(cell, models.NotSolvedMarker) {
		return models.NotSolvedMarker
	}
	if len(cell) > markerSuffixLen {
		return cell[len(cell)-markerSuffixLen:]
	}
	return cell
}

func cleanCell(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
