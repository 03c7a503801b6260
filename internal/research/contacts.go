package research

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-verifier/internal/ingestion"
	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/prompts"
	"github.com/jonathan/job-verifier/internal/schemas"
	"github.com/jonathan/job-verifier/internal/search"
	"github.com/jonathan/job-verifier/internal/types"
)

const (
	// maxContacts caps the HR contacts kept per company.
	maxContacts = 5
	// maxContactPages caps the result pages fetched when a snippet carries no address.
	maxContactPages = 8
	contactWorkers  = 4
	hitsPerHRQuery  = 6
)

type contactHit struct {
	search.Result
	url    string
	emails []string
}

// discoverHRContacts mines search results, then the result pages, for recruiting addresses.
// When domain is known only addresses containing it are kept.
func (inv *Investigator) discoverHRContacts(ctx context.Context, company, domain, jobRole string) []types.Contact {
	if company == "" {
		return nil
	}

	queries := HRQueries(company, domain, jobRole)
	results := make([][]search.Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contactWorkers)
	for i, query := range queries {
		g.Go(func() error {
			results[i] = inv.search.Search(gctx, query, hitsPerHRQuery)
			return nil
		})
	}
	_ = g.Wait()

	var hits []*contactHit
	var pending []*contactHit
	seenURL := make(map[string]bool)
	for _, batch := range results {
		for _, r := range batch {
			hitURL := strings.TrimSpace(r.URL)
			if hitURL == "" || strings.Contains(strings.ToLower(hitURL), "linkedin.com") || seenURL[hitURL] {
				continue
			}
			seenURL[hitURL] = true
			hit := &contactHit{Result: r, url: hitURL, emails: ingestion.ExtractEmails(r.Snippet)}
			hits = append(hits, hit)
			if len(hit.emails) == 0 && len(pending) < maxContactPages {
				pending = append(pending, hit)
			}
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(contactWorkers)
	for _, hit := range pending {
		g.Go(func() error {
			hit.emails = ingestion.ExtractEmails(inv.pageText(gctx, hit.url))
			return nil
		})
	}
	_ = g.Wait()
	if len(pending) > 0 {
		zap.L().Debug("research: fetched contact pages", zap.Int("pages", len(pending)))
	}

	var contacts []types.Contact
	seen := make(map[string]bool)
	for _, hit := range hits {
		for _, email := range hit.emails {
			if (domain != "" && !strings.Contains(email, domain)) || seen[email] {
				continue
			}
			seen[email] = true
			contacts = append(contacts, types.Contact{
				Name:    email,
				Role:    contactRole(hit.Title),
				Profile: hit.url,
			})
			if len(contacts) >= maxContacts {
				return contacts
			}
		}
	}
	return contacts
}

func contactRole(title string) string {
	role := strings.TrimSpace(strings.Split(title, "|")[0])
	if role == "" {
		return "Contact"
	}
	return role
}

// refineContacts asks the model to drop leads that are not genuine HR touchpoints.
// ok is false when the model gave no usable answer and the leads should be kept as found.
func (inv *Investigator) refineContacts(ctx context.Context, company, domain string, contacts []types.Contact) ([]types.Contact, bool) {
	if len(contacts) == 0 || !inv.llmReady(ctx) {
		return nil, false
	}

	data, err := json.Marshal(map[string]any{
		"company":  company,
		"domain":   domain,
		"contacts": contacts,
	})
	if err != nil {
		return nil, false
	}

	obj, ok := inv.llm.StructuredChat(ctx, llm.ChatRequest{
		Prompt:       prompts.MustRender("research.json", "refine-contacts", map[string]string{"Data": string(data)}),
		SystemPrompt: prompts.MustGet("research.json", "refine-contacts-system"),
		MaxTokens:    350,
	})
	if !ok {
		zap.L().Debug("research: contact refinement unavailable")
		return nil, false
	}
	if err := schemas.Validate(schemas.ContactRefinement, obj); err != nil {
		zap.L().Debug("research: contact refinement malformed", zap.Error(err))
		return nil, false
	}

	entries, _ := obj["contacts"].([]any)
	refined := []types.Contact{}
	for _, entry := range entries {
		m, isObj := entry.(map[string]any)
		if !isObj {
			continue
		}
		c := types.Contact{
			Name:    llm.String(m, "name"),
			Role:    llm.String(m, "role"),
			Profile: llm.String(m, "profile"),
		}
		if c.Name == "" || c.Profile == "" {
			continue
		}
		if domain != "" && !strings.Contains(strings.ToLower(c.Profile), strings.ToLower(domain)) && !strings.Contains(c.Name, "@") {
			continue
		}
		refined = append(refined, c)
		if len(refined) >= maxContacts {
			break
		}
	}
	return refined, true
}
