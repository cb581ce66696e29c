package scraper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoPriceTable = errors.New("no price table found")
	ErrNoPriceRows  = errors.New("no price rows found")
)

// Option is an id/name pair read from a <select>.
type Option struct {
	ID   uint
	Name string
}

// PriceRow is one row of the price table, prices as published.
type PriceRow struct {
	Market     string
	Commodity  string
	Variety    string
	MinPrice   int
	MaxPrice   int
	ModalPrice int
	PriceDate  string
}

var (
	statePlaceholders    = []string{"select state", "any state"}
	districtPlaceholders = []string{"select district", "any district"}
	marketPlaceholders   = []string{"select market", "any market"}

	// test entries published on the live site
	ignoredStates = map[string]bool{"demo1": true, "demodemo1": true, "malavan": true}
)

func cleanName(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.Join(strings.Fields(s), " ")
}

func isPlaceholder(name string, placeholders []string) bool {
	lower := strings.ToLower(name)
	for _, p := range placeholders {
		if lower == p {
			return true
		}
	}
	return false
}

// parseStates reads the state selector of the listing page.
func parseStates(doc *goquery.Document) []Option {
	var states []Option
	seen := make(map[uint]bool)
	doc.Find("select#substate_id option, select#state option").Each(func(_ int, s *goquery.Selection) {
		value := strings.TrimSpace(s.AttrOr("value", ""))
		name := cleanName(s.Text())
		if value == "" || value == "0" || name == "" || isPlaceholder(name, statePlaceholders) {
			return
		}
		if ignoredStates[strings.ToLower(name)] {
			return
		}
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || seen[uint(id)] {
			return
		}
		seen[uint(id)] = true
		states = append(states, Option{ID: uint(id), Name: name})
	})
	return states
}

// parseOptions reads every <option> of an option-list fragment.
func parseOptions(doc *goquery.Document, placeholders []string) []Option {
	var options []Option
	seen := make(map[uint]bool)
	doc.Find("option").Each(func(_ int, s *goquery.Selection) {
		value := strings.TrimSpace(s.AttrOr("value", ""))
		name := cleanName(s.Text())
		if value == "" || name == "" || isPlaceholder(name, placeholders) {
			return
		}
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 || seen[uint(id)] {
			return
		}
		seen[uint(id)] = true
		options = append(options, Option{ID: uint(id), Name: name})
	})
	return options
}

func csrfToken(doc *goquery.Document) string {
	token, _ := doc.Find("input[name=_token]").First().Attr("value")
	return token
}

// parsePriceTable reads the first table of a price page. Rows with fewer
// than ten cells are skipped; an unparsable price fails the whole page.
func parsePriceTable(doc *goquery.Document) ([]PriceRow, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoPriceTable
	}

	trs := table.Find("tr")
	if trs.Length() < 2 {
		return nil, nil
	}

	var rows []PriceRow
	var parseErr error
	trs.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 10 {
			return true
		}
		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		row := PriceRow{
			Market:    cleanName(cell(3)),
			Commodity: cleanName(cell(4)),
			Variety:   cleanName(cell(5)),
			PriceDate: cell(9),
		}
		var err error
		if row.MinPrice, err = parsePrice(cell(6)); err != nil {
			parseErr = err
			return false
		}
		if row.MaxPrice, err = parsePrice(cell(7)); err != nil {
			parseErr = err
			return false
		}
		if row.ModalPrice, err = parsePrice(cell(8)); err != nil {
			parseErr = err
			return false
		}
		rows = append(rows, row)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return rows, nil
}

// parsePrice keeps only the digits of a price cell such as "Rs. 2,250".
func parsePrice(raw string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, fmt.Errorf("invalid price %q", strings.TrimFunc(raw, unicode.IsSpace))
	}
	return strconv.Atoi(digits)
}
