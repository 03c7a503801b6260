package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-verifier/internal/fetch"
)

// Placeholders recorded when a field cannot be extracted.
const (
	TitleNotFound       = "Title not found"
	CompanyNotFound     = "Company not found"
	DescriptionNotFound = "Description not found"
)

var (
	paywallIndicators = []string{"sign in", "log in", "login", "join now", "create account", "member login"}
	loginFormClass    = regexp.MustCompile(`(?i)login|sign-in`)
)

// Page is the posting content extracted from one HTML document.
type Page struct {
	Title       string
	Company     string
	Description string
	doc         *goquery.Document
}

// DescriptionLength is the character count of the description, zero for the placeholder.
func (p *Page) DescriptionLength() int {
	if p.Description == DescriptionNotFound {
		return 0
	}
	return len([]rune(p.Description))
}

// emptyPage stands in for a page the plain fetch could not retrieve.
func emptyPage() *Page {
	return &Page{Title: TitleNotFound, Company: CompanyNotFound, Description: DescriptionNotFound}
}

// ParsePage extracts title, company and description from html using the selectors for platform.
func ParsePage(html string, platform fetch.Platform) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	sel := fetch.PlatformSelectors(platform)

	p := &Page{doc: doc}
	p.Title = firstText(doc, sel.Title, false)
	if p.Title == "" {
		p.Title = metaContent(doc, "og:title")
	}
	if p.Title == "" {
		p.Title = TitleNotFound
	}

	p.Company = firstText(doc, sel.Company, false)
	if p.Company == "" {
		p.Company = metaContent(doc, "og:site_name")
	}
	if p.Company == "" {
		p.Company = CompanyNotFound
	}

	p.Description = firstText(doc, sel.Description, true)
	if p.Description == "" {
		p.Description = spacedText(doc.Find("body").First())
	}
	if p.Description == "" {
		p.Description = DescriptionNotFound
	}
	return p, nil
}

// HasPaywall reports an authentication wall: login vocabulary with fewer than 100 words of
// title plus description, or a form whose class names a login.
func (p *Page) HasPaywall() bool {
	text := p.Title + " " + p.Description
	lower := strings.ToLower(text)
	for _, indicator := range paywallIndicators {
		if strings.Contains(lower, indicator) && len(strings.Fields(text)) < 100 {
			return true
		}
	}

	if p.doc == nil {
		return false
	}
	found := false
	p.doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && loginFormClass.MatchString(class) {
			found = true
			return false
		}
		return true
	})
	return found
}

// firstText returns the text of the first element matched by the first selector that matches.
func firstText(doc *goquery.Document, selectors []string, spaced bool) string {
	for _, selector := range selectors {
		s := doc.Find(selector).First()
		if s.Length() == 0 {
			continue
		}
		var text string
		if spaced {
			text = spacedText(s)
		} else {
			text = strings.TrimSpace(s.Text())
		}
		if text != "" {
			return text
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// spacedText joins the text nodes under s with single spaces.
func spacedText(s *goquery.Selection) string {
	s = s.Clone()
	s.Find("script, style, noscript").Remove()
	var parts []string
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		collectText(n, &parts)
	})
	return strings.Join(parts, " ")
}

func collectText(s *goquery.Selection, parts *[]string) {
	if goquery.NodeName(s) == "#text" {
		if t := strings.TrimSpace(s.Text()); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		collectText(child, parts)
	})
}
