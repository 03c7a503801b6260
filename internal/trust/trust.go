// Package trust classifies hosts and email domains against the known-employer and job-board lists.
package trust

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TrustedDomains are hosts whose postings are treated as genuine platform content.
var TrustedDomains = []string{
	"amazon.jobs",
	"careers.google.com",
	"jobs.apple.com",
	"careers.microsoft.com",
	"jobs.netflix.com",
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"monster.com",
	"careerbuilder.com",
	"ziprecruiter.com",
	"oraclecloud.com",
	"oracle.com",
}

// EnterpriseSuffixes are registrable domains of large employers and platforms.
var EnterpriseSuffixes = []string{
	"amazon.com",
	"amazon.jobs",
	"google.com",
	"alphabet.com",
	"microsoft.com",
	"apple.com",
	"meta.com",
	"linkedin.com",
	"oracle.com",
	"oraclecloud.com",
	"workday.com",
	"salesforce.com",
	"indeed.com",
	"glassdoor.com",
}

// GenericEmailDomains are free mailbox providers.
var GenericEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"protonmail.com",
	"icloud.com",
}

// JobBoardDomains host postings on behalf of other employers.
var JobBoardDomains = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"monster.com",
	"careerbuilder.com",
	"ziprecruiter.com",
	"lever.co",
	"greenhouse.io",
	"workday.com",
}

// BrandKeywords mark a company name as a well-known employer.
var BrandKeywords = []string{
	"amazon",
	"google",
	"microsoft",
	"apple",
	"netflix",
	"meta",
	"linkedin",
	"indeed",
	"glassdoor",
	"monster",
	"ziprecruiter",
	"careerbuilder",
	"oracle",
}

// EmailHidingPlatforms never show recruiter addresses on the posting itself.
var EmailHidingPlatforms = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"oraclecloud.com",
	"oracle.com",
	"workday.com",
}

// SuspiciousTLDs are top-level domains common in throwaway scam sites.
var SuspiciousTLDs = []string{"xyz", "top", "store", "site", "click", "info"}

// Host returns the lowercased hostname of rawURL, or "" when it has none.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// IsTrusted reports whether host contains a trusted domain or ends with an enterprise suffix.
func IsTrusted(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	return containsAny(host, TrustedDomains) || hasAnySuffix(host, EnterpriseSuffixes)
}

// IsEnterprise reports whether domain ends with an enterprise suffix.
func IsEnterprise(domain string) bool {
	return hasAnySuffix(strings.ToLower(domain), EnterpriseSuffixes)
}

// IsJobBoard reports whether host belongs to a job board.
func IsJobBoard(host string) bool {
	return containsAny(strings.ToLower(host), JobBoardDomains)
}

// HidesEmails reports whether host is a platform that never shows contact emails.
func HidesEmails(host string) bool {
	return containsAny(strings.ToLower(host), EmailHidingPlatforms)
}

// IsGenericEmailDomain reports whether domain is a free mailbox provider.
func IsGenericEmailDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, d := range GenericEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// HasSuspiciousTLD reports whether the last label of domain is a suspicious TLD.
func HasSuspiciousTLD(domain string) bool {
	domain = strings.ToLower(domain)
	idx := strings.LastIndex(domain, ".")
	if idx < 0 {
		return false
	}
	tld := domain[idx+1:]
	for _, t := range SuspiciousTLDs {
		if tld == t {
			return true
		}
	}
	return false
}

// MentionsBrand reports whether a company name contains a well-known brand keyword.
func MentionsBrand(company string) bool {
	return containsAny(strings.ToLower(company), BrandKeywords)
}

// ContainsTrustedDomain reports whether domain contains any trusted domain.
func ContainsTrustedDomain(domain string) bool {
	return containsAny(strings.ToLower(domain), TrustedDomains)
}

// Registrable reduces a host to its registrable domain (eTLD+1), dropping a leading "www.".
// Hosts the public suffix list cannot reduce are returned lowercased as is.
func Registrable(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// EmailDomain returns the lowercased domain part of an address.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	if s == "" {
		return false
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
