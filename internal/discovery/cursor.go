// Package discovery walks LinkedIn search results and lazily yields the
// postings that pass the search filters.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"letraz-autoapply/internal/browser"
	"letraz-autoapply/internal/linkedin"
	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/models"
	"letraz-autoapply/pkg/utils"
)

// Cursor pulls qualifying postings one at a time. Each call to Next does
// only as much browser work as is needed to produce the next posting, so a
// consumer driving the same session between calls never overlaps with
// discovery. A Cursor is single use and not safe for concurrent use.
type Cursor struct {
	session  browser.Session
	criteria models.SearchCriteria
	matcher  *Matcher
	opts     Options
	logger   types.Logger

	workTypes string
	seen      int
	matched   int
	start     int
	geoID     string
	total     int

	started  bool
	done     bool
	pageOpen bool
	items    []browser.Element
	next     int
	limit    int

	current models.JobPosting
	err     error
}

// NewCursor prepares a search. No browser work happens until the first Next.
func NewCursor(session browser.Session, criteria models.SearchCriteria, matcher *Matcher, opts Options, logger types.Logger) *Cursor {
	return &Cursor{
		session:   session,
		criteria:  criteria,
		matcher:   matcher,
		opts:      opts.withDefaults(),
		logger:    logger,
		workTypes: linkedin.WorkTypeFilter(criteria.Workplace),
	}
}

// Next advances to the next qualifying posting. It returns false when the
// results are exhausted, the context ends, or setup fails; Err tells which.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}

	if !c.started {
		c.started = true
		if err := c.setup(ctx); err != nil {
			c.stop(err)
			return false
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			c.stop(err)
			return false
		}

		if !c.pageOpen {
			if c.seen >= c.total {
				c.stop(nil)
				return false
			}
			if err := c.openPage(ctx); err != nil {
				c.stop(err)
				return false
			}
			if len(c.items) == 0 {
				c.logger.Info("No job listings on results page, ending search", map[string]interface{}{
					"start": c.start,
				})
				c.stop(nil)
				return false
			}
		}

		if c.next < c.limit {
			item := c.items[c.next]
			c.next++

			posting, ok, err := c.evaluate(ctx, item)
			if err != nil {
				if ctx.Err() != nil {
					c.stop(ctx.Err())
					return false
				}
				c.logger.Warn("Error processing job listing", map[string]interface{}{
					"start": c.start,
					"index": c.next - 1,
					"error": err.Error(),
				})
				continue
			}
			if ok {
				c.matched++
				c.current = posting
				return true
			}
			continue
		}

		// The full page size advances the offset, even past items beyond the cap
		c.seen += len(c.items)
		c.closePage()

		if err := utils.Sleep(ctx, c.opts.PageDelay); err != nil {
			c.stop(err)
			return false
		}
	}
}

// Posting returns the posting found by the last successful Next
func (c *Cursor) Posting() models.JobPosting {
	return c.current
}

// Err returns the error that ended the cursor, or nil on clean exhaustion
func (c *Cursor) Err() error {
	return c.err
}

// Stats returns a snapshot of the search counters. Items already examined on
// the current page count as seen, so Matched never exceeds Seen.
func (c *Cursor) Stats() models.SearchStats {
	seen := c.seen
	if c.pageOpen {
		seen += c.next
	}
	return models.SearchStats{
		Seen:    seen,
		Matched: c.matched,
		Start:   c.start,
		GeoID:   c.geoID,
		Total:   c.total,
	}
}

// All adapts the cursor to a range-over-func sequence. A terminal error is
// delivered as a final pair with a zero posting.
func (c *Cursor) All(ctx context.Context) iter.Seq2[models.JobPosting, error] {
	return func(yield func(models.JobPosting, error) bool) {
		for c.Next(ctx) {
			if !yield(c.Posting(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			yield(models.JobPosting{}, err)
		}
	}
}

func (c *Cursor) setup(ctx context.Context) error {
	sel := c.opts.Selectors
	wait := browser.WaitOptions{Timeout: c.opts.SetupTimeout}

	if err := c.session.Navigate(ctx, linkedin.JobsURL(c.opts.BaseURL), c.opts.NavigationTimeout); err != nil {
		return utils.NewSearchSetupError("open jobs page", err)
	}
	if err := c.session.Type(ctx, sel.KeywordInput, c.criteria.Keywords); err != nil {
		return utils.NewSearchSetupError("type keywords", err)
	}
	if _, err := c.session.WaitForSelector(ctx, sel.LocationInput, browser.WaitOptions{Visible: true, Timeout: c.opts.SetupTimeout}); err != nil {
		return utils.NewSearchSetupError("location input", err)
	}
	if err := c.evalTrue(ctx, linkedin.SetInputValueJS, sel.LocationInput, c.criteria.Location); err != nil {
		return utils.NewSearchSetupError("set location", err)
	}
	if err := c.session.Type(ctx, sel.LocationInput, " "); err != nil {
		return utils.NewSearchSetupError("type location", err)
	}
	if err := c.evalTrue(ctx, linkedin.ClickSelectorJS, sel.SearchSubmit); err != nil {
		return utils.NewSearchSetupError("submit search", err)
	}
	if err := c.session.WaitForCondition(ctx, linkedin.HasGeoIDJS, c.opts.SetupTimeout); err != nil {
		return utils.NewSearchSetupError("no geoId after search", err)
	}

	current, err := c.session.CurrentURL(ctx)
	if err != nil {
		return utils.NewSearchSetupError("read current URL", err)
	}
	c.geoID = linkedin.GeoIDFromURL(current)

	countEl, err := c.session.WaitForSelector(ctx, sel.ResultCountText, wait)
	if err != nil {
		return utils.NewSearchSetupError("result count", err)
	}
	text, err := countEl.Text(ctx)
	if err != nil {
		return utils.NewSearchSetupError("read result count", err)
	}
	c.total, err = linkedin.ParseResultCount(text)
	if err != nil {
		return utils.NewSearchSetupError("parse result count", err)
	}

	c.logger.Info("Job search ready", map[string]interface{}{
		"keywords":  c.criteria.Keywords,
		"location":  c.criteria.Location,
		"geo_id":    c.geoID,
		"total":     c.total,
		"work_type": c.workTypes,
	})
	return nil
}

func (c *Cursor) openPage(ctx context.Context) error {
	c.start = c.seen
	pageURL, err := linkedin.SearchURL(c.opts.BaseURL, linkedin.SearchQuery{
		Keywords:  c.criteria.Keywords,
		Location:  c.criteria.Location,
		Start:     c.start,
		WorkTypes: c.workTypes,
		GeoID:     c.geoID,
	})
	if err != nil {
		return utils.NewResultsPageError(c.opts.BaseURL, err)
	}

	if err := c.session.Navigate(ctx, pageURL, c.opts.NavigationTimeout); err != nil {
		return utils.NewResultsPageError(pageURL, err)
	}
	items, err := c.session.QueryAll(ctx, c.opts.Selectors.ResultItem)
	if err != nil {
		return utils.NewResultsPageError(pageURL, err)
	}

	c.items = items
	c.next = 0
	c.limit = min(len(items), c.opts.PageCap)
	c.pageOpen = true

	c.logger.Debug("Results page loaded", map[string]interface{}{
		"start": c.start,
		"items": len(items),
	})
	return nil
}

func (c *Cursor) closePage() {
	c.items = nil
	c.next = 0
	c.limit = 0
	c.pageOpen = false
}

// evaluate extracts one result item and runs the filters over it
func (c *Cursor) evaluate(ctx context.Context, item browser.Element) (models.JobPosting, bool, error) {
	sel := c.opts.Selectors

	link, err := item.Element(ctx, sel.ResultItemLink)
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("title link", err)
	}
	if err := link.Click(ctx); err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("open listing", err)
	}
	href, err := link.Property(ctx, "href")
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("listing href", err)
	}
	title, err := link.Text(ctx)
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("listing title", err)
	}

	descEl, err := c.session.WaitForSelector(ctx, sel.JobDescription, browser.WaitOptions{Timeout: c.opts.DescriptionTimeout})
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("job description", err)
	}
	description, err := descEl.Text(ctx)
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("job description text", err)
	}

	companyEl, err := item.Element(ctx, sel.ResultItemCompany)
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("company name", err)
	}
	company, err := companyEl.Text(ctx)
	if err != nil {
		return models.JobPosting{}, false, utils.NewExtractionError("company name text", err)
	}

	posting := models.JobPosting{
		Link:        strings.TrimSpace(href),
		Title:       strings.TrimSpace(title),
		CompanyName: strings.TrimSpace(company),
	}

	_, err = c.session.Query(ctx, sel.EasyApplyButton)
	canApply := err == nil
	if err != nil && !errors.Is(err, browser.ErrElementNotFound) {
		return models.JobPosting{}, false, utils.NewExtractionError("easy apply check", err)
	}
	if !canApply {
		c.logger.Debug("Skipping posting without easy apply", map[string]interface{}{
			"link": posting.Link,
		})
		return posting, false, nil
	}

	ok, reason := c.matcher.Match(posting.Title, strings.TrimSpace(description))
	if !ok {
		c.logger.Debug("Posting rejected by filter", map[string]interface{}{
			"link":   posting.Link,
			"title":  posting.Title,
			"filter": reason,
		})
	}
	return posting, ok, nil
}

func (c *Cursor) evalTrue(ctx context.Context, js string, args ...interface{}) error {
	res, err := c.session.Evaluate(ctx, js, args...)
	if err != nil {
		return err
	}
	if ok, _ := res.(bool); !ok {
		return fmt.Errorf("%w: %v", browser.ErrElementNotFound, args[0])
	}
	return nil
}

func (c *Cursor) stop(err error) {
	c.done = true
	c.err = err
	c.items = nil

	fields := map[string]interface{}{
		"seen":    c.seen,
		"matched": c.matched,
		"total":   c.total,
	}
	if err != nil {
		fields["error"] = err.Error()
		c.logger.Error("Job search ended with error", fields)
		return
	}
	c.logger.Info("Job search finished", fields)
}
