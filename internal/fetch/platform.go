// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformLinkedIn is LinkedIn Jobs
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is Indeed
	PlatformIndeed Platform = "indeed"
	// PlatformAmazonJobs is amazon.jobs
	PlatformAmazonJobs Platform = "amazon_jobs"
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "linkedin.com"):
		return PlatformLinkedIn
	case strings.Contains(host, "indeed.com"):
		return PlatformIndeed
	case strings.Contains(host, "amazon.jobs"):
		return PlatformAmazonJobs
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return PlatformLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return PlatformWorkday
	}

	return PlatformUnknown
}

// Selectors lists CSS selectors tried in order for each posting field.
// Each entry may be a selector group; the first matching element wins.
type Selectors struct {
	Title       []string
	Company     []string
	Description []string
}

// Generic fallbacks shared by every platform.
var (
	genericTitle       = []string{"h1"}
	genericCompany     = []string{".topcard__org-name-link, .company-name, [data-company]"}
	genericDescription = []string{".description, .job-description, [data-job-description], article, main"}
)

// PlatformSelectors returns the selectors for a platform followed by the generic fallbacks.
func PlatformSelectors(platform Platform) Selectors {
	var s Selectors

	switch platform {
	case PlatformLinkedIn:
		s.Title = []string{".top-card-layout__title, .topcard__title, h1.t-24"}
		s.Company = []string{".topcard__org-name-link, .topcard__flavor--black-link, .job-details-jobs-unified-top-card__company-name a"}
		s.Description = []string{
			".show-more-less-html__markup",
			".description__text",
			".job-view-layout .description",
			"div[class*='description']",
		}
	case PlatformIndeed:
		s.Title = []string{"h1.jobsearch-JobInfoHeader-title, .icl-u-xs-mb--xs"}
		s.Company = []string{"[data-company-name], .icl-u-lg-mr--sm"}
		s.Description = []string{"#jobDescriptionText, .jobsearch-jobDescriptionText"}
	case PlatformAmazonJobs:
		s.Description = []string{
			".job-detail-description",
			"#job-detail-body",
			"[data-test='description']",
			"div[class*='description']",
		}
	case PlatformGreenhouse:
		s.Description = []string{
			".job__description.body",
			".job__description",
			".job-description__content",
		}
	case PlatformLever:
		s.Description = []string{
			".posting-page",
			".posting-description",
		}
	case PlatformWorkday:
		s.Description = []string{
			"[data-automation-id='jobPostingDescription']",
			"[data-automation-id='jobDescription']",
		}
	}

	s.Title = append(s.Title, genericTitle...)
	s.Company = append(s.Company, genericCompany...)
	s.Description = append(s.Description, genericDescription...)
	return s
}
