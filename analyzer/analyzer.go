/*
Package analyzer extracts structured hiring signals from free-text job
descriptions: certifications, required experience, expertise tags, job and
company type, academic degrees, and ranked keywords.

Analysis is a pure function of the description text. The keyword cap and the
expertise dictionary are configuration, not code: the original system shipped
two diverging copies of this logic and the divergence is resolved here by
making the tunables explicit.
*/
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result holds the signals extracted from one job description
type Result struct {
	Certifications  []string `json:"certifications"`
	ExperienceRange string   `json:"experience_range,omitempty"`
	Expertise       []string `json:"expertise"`
	JobType         string   `json:"job_type"`
	CompanyType     string   `json:"company_type"`
	Keywords        []string `json:"keywords"`
	Degrees         []string `json:"degrees"`
}

// Defaults used when no rule matches
const (
	DefaultJobType     = "General Finance"
	DefaultCompanyType = "Unknown"
)

const expertiseLimit = 6

// Config tunes the analyzer
type Config struct {
	// KeywordLimit caps the ranked keyword list
	KeywordLimit int
	// Expertise is the ordered tag dictionary; matches are reported in
	// dictionary order and capped at six
	Expertise []ExpertisePattern
}

// ExpertisePattern maps a tag name to its matching pattern
type ExpertisePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// namedPattern maps a canonical name to a pattern (certifications, degrees)
type namedPattern struct {
	name    string
	pattern *regexp.Regexp
}

// keywordRule resolves a label from a list of substrings (job/company type)
type keywordRule struct {
	label    string
	keywords []string
}

var certificationPatterns = []namedPattern{
	{"CFA", regexp.MustCompile(`(?i)\bCFA\b`)},
	{"ACCA", regexp.MustCompile(`(?i)\bACCA\b`)},
	{"ACA", regexp.MustCompile(`(?i)\bACA\b`)},
	{"CIMA", regexp.MustCompile(`(?i)\bCIMA\b`)},
	{"CISI", regexp.MustCompile(`(?i)\bCISI\b`)},
	{"FRM", regexp.MustCompile(`(?i)\bFRM\b`)},
	{"CIPFA", regexp.MustCompile(`(?i)\bCIPFA\b`)},
	{"CA", regexp.MustCompile(`(?i)\bCA\b`)},
	{"MBA", regexp.MustCompile(`(?i)\bMBA\b`)},
	{"CPA", regexp.MustCompile(`(?i)\bCPA\b`)},
}

// Experience patterns in priority order; the first match decides the format
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:to|-|–)\s*(\d+)\+?\s*years?`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*years?`),
	regexp.MustCompile(`(?i)minimum\s*(?:of\s*)?(\d+)\s*years?`),
	regexp.MustCompile(`(?i)at\s*least\s*(\d+)\s*years?`),
}

var degreePatterns = []namedPattern{
	{"PhD", regexp.MustCompile(`(?i)\bPh\.?D\.?\b|\bDoctorate\b`)},
	{"MBA", regexp.MustCompile(`(?i)\bMBA\b`)},
	{"Master's", regexp.MustCompile(`(?i)\bMaster'?s?\b|\bM\.?Sc?\.?\b|\bM\.?A\.?\b`)},
	{"Bachelor's", regexp.MustCompile(`(?i)\bBachelor'?s?\b|\bB\.?Sc?\.?\b|\bB\.?A\.?\b`)},
}

var jobTypeRules = []keywordRule{
	{"Investment Banking", []string{"investment bank", "ib ", "m&a", "mergers", "acquisitions"}},
	{"Portfolio Management", []string{"portfolio manager", "portfolio management"}},
	{"Financial Analysis", []string{"financial analyst", "financial analysis"}},
	{"Risk Management", []string{"risk manager", "risk management", "risk analyst"}},
	{"Asset Management", []string{"asset manager", "asset management", "fund manager"}},
	{"Private Equity", []string{"private equity"}},
	{"Trading", []string{"trader", "trading desk", "sales and trading"}},
	{"Accounting", []string{"accountant", "accounting", "audit"}},
}

var companyTypeRules = []keywordRule{
	{"Investment Bank", []string{"goldman sachs", "morgan stanley", "jp morgan", "investment bank"}},
	{"Asset Manager", []string{"blackrock", "vanguard", "fidelity", "asset manag"}},
	{"Hedge Fund", []string{"hedge fund", "citadel", "bridgewater"}},
	{"Big 4", []string{"deloitte", "pwc", "kpmg", "ernst & young"}},
	{"Fintech", []string{"fintech", "payments", "crypto"}},
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "will": {}, "are": {},
}

var (
	wordPattern       = regexp.MustCompile(`\b[a-z]{3,}\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
)

// DefaultExpertise is the canonical expertise dictionary. Order matters: tags
// are reported in definition order, not match-frequency order.
var DefaultExpertise = []ExpertisePattern{
	// Financial analysis and modeling
	{"Financial Modeling", regexp.MustCompile(`(?i)financial\s*model(?:l?ing)?`)},
	{"DCF Analysis", regexp.MustCompile(`(?i)\bDCF\b|discounted\s*cash\s*flow`)},
	{"LBO Modeling", regexp.MustCompile(`(?i)\bLBO\b|leveraged\s*buyout`)},
	{"M&A", regexp.MustCompile(`(?i)\bM&A\b|mergers?\s*(?:and|&)\s*acquisitions?`)},
	{"Valuation", regexp.MustCompile(`(?i)\bvaluation`)},
	{"Due Diligence", regexp.MustCompile(`(?i)due\s*diligence`)},
	{"Financial Analysis", regexp.MustCompile(`(?i)financial\s*analy(?:sis|st)`)},
	{"Budget Management", regexp.MustCompile(`(?i)budget(?:ing)?\s*manag(?:ement|er)`)},
	{"Forecasting", regexp.MustCompile(`(?i)forecast(?:ing)?`)},
	{"Scenario Analysis", regexp.MustCompile(`(?i)scenario\s*analy(?:sis|st)`)},

	// Investment and portfolio
	{"Portfolio Management", regexp.MustCompile(`(?i)portfolio\s*manag(?:ement|er)`)},
	{"Investment Analysis", regexp.MustCompile(`(?i)investment\s*analy(?:sis|st)`)},
	{"Asset Allocation", regexp.MustCompile(`(?i)asset\s*allocation`)},
	{"Performance Attribution", regexp.MustCompile(`(?i)performance\s*attribution`)},
	{"Equity Research", regexp.MustCompile(`(?i)equity\s*research`)},
	{"Fixed Income", regexp.MustCompile(`(?i)fixed\s*income`)},
	{"Derivatives", regexp.MustCompile(`(?i)derivatives?`)},
	{"Options Trading", regexp.MustCompile(`(?i)options?\s*trad(?:ing|er)`)},
	{"Futures", regexp.MustCompile(`(?i)futures?\s*(?:trading|contract)`)},
	{"Commodities", regexp.MustCompile(`(?i)commodit(?:y|ies)`)},
	{"FX Trading", regexp.MustCompile(`(?i)\bFX\b|forex|foreign\s*exchange`)},
	{"Alternative Investments", regexp.MustCompile(`(?i)alternative\s*investment`)},

	// Asset and fund management
	{"Fund Management", regexp.MustCompile(`(?i)fund\s*manag(?:ement|er)`)},
	{"Asset Management", regexp.MustCompile(`(?i)asset\s*manag(?:ement|er)`)},
	{"Private Equity", regexp.MustCompile(`(?i)private\s*equity`)},
	{"Venture Capital", regexp.MustCompile(`(?i)venture\s*capital`)},
	{"Hedge Fund", regexp.MustCompile(`(?i)hedge\s*fund`)},
	{"Real Estate Investment", regexp.MustCompile(`(?i)real\s*estate\s*investment|\bREIT\b`)},
	{"Wealth Management", regexp.MustCompile(`(?i)wealth\s*manag(?:ement|er)`)},

	// Risk and compliance
	{"Risk Management", regexp.MustCompile(`(?i)risk\s*manag(?:ement|er)`)},
	{"Credit Risk", regexp.MustCompile(`(?i)credit\s*risk`)},
	{"Market Risk", regexp.MustCompile(`(?i)market\s*risk`)},
	{"Operational Risk", regexp.MustCompile(`(?i)operational\s*risk`)},
	{"VaR", regexp.MustCompile(`(?i)\bVaR\b|value\s*at\s*risk`)},
	{"Stress Testing", regexp.MustCompile(`(?i)stress\s*test(?:ing)?`)},
	{"Compliance", regexp.MustCompile(`(?i)\bcompliance\b`)},
	{"Regulatory", regexp.MustCompile(`(?i)\bregulatory\b`)},
	{"AML", regexp.MustCompile(`(?i)\bAML\b|anti[\s-]money[\s-]launder(?:ing)?`)},
	{"KYC", regexp.MustCompile(`(?i)\bKYC\b|know\s*your\s*customer`)},
	{"Basel III", regexp.MustCompile(`(?i)basel\s*(?:III|3)`)},
	{"IFRS", regexp.MustCompile(`(?i)\bIFRS\b`)},
	{"GAAP", regexp.MustCompile(`(?i)\bGAAP\b`)},

	// Tooling
	{"Bloomberg Terminal", regexp.MustCompile(`(?i)bloomberg(?:\s*terminal)?`)},
	{"Excel", regexp.MustCompile(`(?i)\bexcel\b|\bVBA\b`)},
	{"SQL", regexp.MustCompile(`(?i)\bSQL\b`)},
	{"Python", regexp.MustCompile(`(?i)\bpython\b`)},
}

// DefaultConfig returns the canonical analyzer configuration
func DefaultConfig() Config {
	return Config{
		KeywordLimit: 10,
		Expertise:    DefaultExpertise,
	}
}

// Analyzer extracts signals from job descriptions
type Analyzer struct {
	cfg Config
}

// New creates an analyzer with the given configuration, filling in defaults
// for zero values
func New(cfg Config) *Analyzer {
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = DefaultConfig().KeywordLimit
	}
	if len(cfg.Expertise) == 0 {
		cfg.Expertise = DefaultExpertise
	}
	return &Analyzer{cfg: cfg}
}

// Analyze extracts all signals from a job description. It is a pure function
// of the input text: two calls with the same description yield equal results.
func (a *Analyzer) Analyze(description string) *Result {
	cleanText := CleanText(description)
	lowerText := strings.ToLower(cleanText)

	return &Result{
		Certifications:  matchNamed(certificationPatterns, cleanText),
		ExperienceRange: extractExperience(cleanText),
		Expertise:       a.matchExpertise(cleanText),
		JobType:         resolveLabel(jobTypeRules, lowerText, DefaultJobType),
		CompanyType:     resolveLabel(companyTypeRules, lowerText, DefaultCompanyType),
		Keywords:        a.extractKeywords(lowerText),
		Degrees:         matchNamed(degreePatterns, cleanText),
	}
}

// CleanText strips markup and collapses whitespace
func CleanText(text string) string {
	stripped := text
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		stripped = doc.Text()
	} else {
		stripped = tagPattern.ReplaceAllString(text, " ")
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(stripped, " "))
}

// matchNamed returns the canonical names of all matching patterns, in
// pattern-definition order, each at most once
func matchNamed(patterns []namedPattern, text string) []string {
	var found []string
	for _, p := range patterns {
		if p.pattern.MatchString(text) {
			found = append(found, p.name)
		}
	}
	return found
}

// extractExperience tries the experience patterns in priority order; the
// first match wins. No match yields an empty string, never a default.
func extractExperience(text string) string {
	for i, pattern := range experiencePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if i == 0 {
			return match[1] + "-" + match[2] + " years"
		}
		return match[1] + "+ years"
	}
	return ""
}

// matchExpertise reports matching tags in dictionary order, capped at six
func (a *Analyzer) matchExpertise(text string) []string {
	var tags []string
	for _, entry := range a.cfg.Expertise {
		if entry.Pattern.MatchString(text) {
			tags = append(tags, entry.Name)
			if len(tags) == expertiseLimit {
				break
			}
		}
	}
	return tags
}

// resolveLabel returns the label of the first rule with any keyword present
// as a substring of the lower-cased text
func resolveLabel(rules []keywordRule, lowerText, fallback string) string {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowerText, kw) {
				return rule.label
			}
		}
	}
	return fallback
}

// extractKeywords counts alphabetic tokens of length >= 3, drops stop words,
// and returns the most frequent tokens in descending frequency order. Ties
// keep first-encountered order.
func (a *Analyzer) extractKeywords(lowerText string) []string {
	tokens := wordPattern.FindAllString(lowerText, -1)

	counts := make(map[string]int)
	var order []string
	for _, token := range tokens {
		if _, stop := stopWords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > a.cfg.KeywordLimit {
		order = order[:a.cfg.KeywordLimit]
	}
	return order
}
