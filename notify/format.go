/*
Package notify renders job postings into chat messages and delivers them to
the Telegram Bot API.
*/
package notify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rzafh/portfolio-backend/analyzer"
	"github.com/rzafh/portfolio-backend/feeds"
)

// JobDetails is the company/position/location triple derived from a title
type JobDetails struct {
	Company   string
	Position  string
	Location  string
	FullTitle string
}

const detailUnknown = "N/A"

var (
	cdataPattern  = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	hiringPattern = regexp.MustCompile(`(?i)(.+?)\s+hiring\s+(.+?)\s+(?:at|in)\s+(.+)`)
)

// ExtractJobDetails splits an "X hiring Y at/in Z" title into its parts.
// Titles that do not match keep the cleaned full title as the position and
// N/A for company and location.
func ExtractJobDetails(title string) JobDetails {
	cleanTitle := strings.TrimSpace(cdataPattern.ReplaceAllString(title, ""))

	if m := hiringPattern.FindStringSubmatch(cleanTitle); m != nil {
		return JobDetails{
			Company:   strings.TrimSpace(m[1]),
			Position:  strings.TrimSpace(m[2]),
			Location:  strings.TrimSpace(m[3]),
			FullTitle: cleanTitle,
		}
	}

	return JobDetails{
		Company:   detailUnknown,
		Position:  cleanTitle,
		Location:  detailUnknown,
		FullTitle: cleanTitle,
	}
}

// TimeAgo renders the gap between a publish time and now as a short
// human-readable string
func TimeAgo(published, now time.Time) string {
	totalMinutes := int(now.Sub(published).Minutes())

	switch {
	case totalMinutes < 1:
		return "Just now"
	case totalMinutes < 60:
		if totalMinutes == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", totalMinutes)
	case totalMinutes < 24*60:
		return fmt.Sprintf("%dh %dm ago", totalMinutes/60, totalMinutes%60)
	default:
		days := totalMinutes / (24 * 60)
		hours := (totalMinutes % (24 * 60)) / 60
		return fmt.Sprintf("%dd %dh ago", days, hours)
	}
}

const messageSeparator = "━━━━━━━━━━━━━━━━━━━━━━"

// FormatMessage renders one posting plus its analysis into the notification
// message. Optional lines are omitted entirely when their field is empty or
// equals its default label. The item must have survived the recency filter,
// so PublishedAt is non-nil.
func FormatMessage(item *feeds.Item, analysis *analyzer.Result, now time.Time) string {
	details := ExtractJobDetails(item.Title)
	postDate := *item.PublishedAt

	var b strings.Builder

	b.WriteString("🆕 NEW JOB POSTING\n")
	b.WriteString(messageSeparator + "\n\n")
	b.WriteString("📋 Position: " + details.Position + "\n\n")
	b.WriteString("🏢 Company: " + details.Company)

	if analysis.CompanyType != "" && analysis.CompanyType != analyzer.DefaultCompanyType {
		b.WriteString("\n🏦 Industry: " + analysis.CompanyType)
	}

	b.WriteString("\n\n📍 Location: " + details.Location)

	if analysis.JobType != "" && analysis.JobType != analyzer.DefaultJobType {
		b.WriteString("\n💼 Role Type: " + analysis.JobType)
	}

	if analysis.ExperienceRange != "" {
		b.WriteString("\n📊 Experience: " + analysis.ExperienceRange)
	}

	if len(analysis.Certifications) > 0 {
		b.WriteString("\n🎓 Certifications: " + strings.Join(analysis.Certifications, ", "))
	}

	if len(analysis.Degrees) > 0 {
		b.WriteString("\n🎓 Education: " + strings.Join(analysis.Degrees, ", "))
	}

	if len(analysis.Expertise) > 0 {
		b.WriteString("\n\n🔧 Key Skills:\n")
		for _, skill := range analysis.Expertise {
			b.WriteString("   • " + skill + "\n")
		}
	}

	if len(analysis.Keywords) > 0 {
		b.WriteString("\n🔍 Keywords: " + strings.Join(analysis.Keywords, ", "))
	}

	b.WriteString("\n\n⏰ Posted: " + TimeAgo(postDate, now) + "\n")
	b.WriteString("📅 " + postDate.Format("Mon, 02 Jan 2006") + " at " + postDate.Format("15:04:05") + "\n\n")
	b.WriteString("🔗 Apply here:\n" + item.Link + "\n\n")
	b.WriteString(messageSeparator + "\n")
	b.WriteString("💼 LinkedIn Jobs Monitor")

	return b.String()
}
