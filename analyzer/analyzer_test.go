package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeExtractsSignals(t *testing.T) {
	a := New(DefaultConfig())

	description := "Seeking a CFA charterholder with 3 to 5 years experience in " +
		"financial modeling and valuation. Bachelor's degree required. " +
		"You will join a leading investment bank."

	result := a.Analyze(description)

	assert.Contains(t, result.Certifications, "CFA")
	assert.Equal(t, "3-5 years", result.ExperienceRange)
	assert.Contains(t, result.Expertise, "Financial Modeling")
	assert.Contains(t, result.Expertise, "Valuation")
	assert.Equal(t, "Investment Banking", result.JobType)
	assert.Equal(t, "Investment Bank", result.CompanyType)
	assert.Contains(t, result.Degrees, "Bachelor's")
}

func TestAnalyzeIsPure(t *testing.T) {
	a := New(DefaultConfig())
	description := "Risk analyst role, minimum of 7 years, FRM preferred, strong SQL and Python."

	first := a.Analyze(description)
	second := a.Analyze(description)

	assert.Equal(t, first, second)
}

func TestAnalyzeDefaults(t *testing.T) {
	a := New(DefaultConfig())

	result := a.Analyze("An ordinary role description without any signals of note.")

	assert.Equal(t, DefaultJobType, result.JobType)
	assert.Equal(t, DefaultCompanyType, result.CompanyType)
	assert.Empty(t, result.ExperienceRange)
	assert.Empty(t, result.Certifications)
	assert.Empty(t, result.Degrees)
}

func TestExtractExperience(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"explicit range", "requires 3 to 5 years of experience", "3-5 years"},
		{"hyphen range", "2-4 years in a similar role", "2-4 years"},
		{"plus years", "5+ years of experience", "5+ years"},
		{"minimum of", "minimum of 7 years required", "7+ years"},
		{"at least", "at least 4 years in audit", "4+ years"},
		{"no mention", "strong communication skills", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractExperience(tt.text))
		})
	}
}

func TestExpertiseCappedInDictionaryOrder(t *testing.T) {
	a := New(DefaultConfig())

	description := "Financial modeling, DCF, LBO, M&A, valuation, due diligence " +
		"and forecasting across the deal lifecycle."

	result := a.Analyze(description)

	require.Len(t, result.Expertise, 6)
	assert.Equal(t, []string{
		"Financial Modeling",
		"DCF Analysis",
		"LBO Modeling",
		"M&A",
		"Valuation",
		"Due Diligence",
	}, result.Expertise)
}

func TestExtractKeywords(t *testing.T) {
	a := New(DefaultConfig())

	result := a.Analyze("the banking banking banking finance finance analyst and you will")

	require.NotEmpty(t, result.Keywords)
	assert.Equal(t, []string{"banking", "finance", "analyst"}, result.Keywords)
}

func TestKeywordLimitConfigurable(t *testing.T) {
	a := New(Config{KeywordLimit: 2})

	result := a.Analyze("alpha alpha beta beta gamma delta epsilon")

	assert.Len(t, result.Keywords, 2)
	assert.Equal(t, []string{"alpha", "beta"}, result.Keywords)
}

func TestCleanTextStripsMarkup(t *testing.T) {
	assert.Equal(t, "Hello world", CleanText("<p>Hello   <b>world</b></p>"))
	assert.Equal(t, "plain text", CleanText("plain\n\ttext"))
}

func TestNewFillsDefaults(t *testing.T) {
	a := New(Config{})

	assert.Equal(t, DefaultConfig().KeywordLimit, a.cfg.KeywordLimit)
	assert.Len(t, a.cfg.Expertise, len(DefaultExpertise))
}
