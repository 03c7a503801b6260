package parsing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// skillAliases maps lower-cased spellings seen in postings to one canonical skill name.
var skillAliases = map[string]string{
	"golang":           "Go",
	"go lang":          "Go",
	"js":               "JavaScript",
	"javascript":       "JavaScript",
	"ts":               "TypeScript",
	"typescript":       "TypeScript",
	"k8s":              "Kubernetes",
	"reactjs":          "React",
	"react.js":         "React",
	"vuejs":            "Vue",
	"vue.js":           "Vue",
	"nodejs":           "Node.js",
	"node.js":          "Node.js",
	"postgres":         "PostgreSQL",
	"postgresql":       "PostgreSQL",
	"aws":              "AWS",
	"gcp":              "GCP",
	"sql":              "SQL",
	"crm":              "CRM",
	"ms excel":         "Excel",
	"microsoft excel":  "Excel",
	"ms office":        "Microsoft Office",
	"ms word":          "Word",
	"quickbooks":       "QuickBooks",
	"powerpoint":       "PowerPoint",
	"customer support": "Customer Service",
	"data-entry":       "Data Entry",
}

var titleCase = cases.Title(language.English)

// NormalizeSkillName maps a skill to its canonical spelling. Known aliases win; a single word
// written in one case is title-cased; anything else keeps its casing with whitespace squeezed.
func NormalizeSkillName(skill string) string {
	s := strings.Join(strings.Fields(skill), " ")
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	if !strings.Contains(s, " ") && (s == lower || s == strings.ToUpper(s)) {
		return titleCase.String(s)
	}
	return s
}

// NormalizeSkills canonicalizes skill names and drops empties and duplicates, keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		s := NormalizeSkillName(skill)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
