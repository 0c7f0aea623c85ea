package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

// FirstError returns the first failing check.
func (r Report) FirstError() (Check, bool) {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return check, true
		}
	}
	return Check{}, false
}

// Session is the connection the checks run against.
type Session interface {
	Login(ctx context.Context, username, password string) error
	Whoami(ctx context.Context) (churchtools.Person, error)
	FetchCSRFToken(ctx context.Context) error
	Info(ctx context.Context) (churchtools.Info, error)
}

type Checker struct {
	Validate func(config.Config) error
}

func NewChecker() *Checker {
	return &Checker{Validate: config.Validate}
}

// Check validates cfg and walks through login, CSRF and info retrieval. The
// first failing step ends the report.
func (c *Checker) Check(ctx context.Context, cfg config.Config, session Session) Report {
	report := Report{Checks: []Check{}}

	validate := c.Validate
	if validate == nil {
		validate = config.Validate
	}
	if err := validate(cfg); err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityError, Name: "config", Message: err.Error()})
		return report
	}
	report.Checks = append(report.Checks, Check{Severity: SeverityInfo, Name: "config", Message: fmt.Sprintf("using %s", cfg.APIURL)})

	if cfg.APIToken == "" && cfg.Username != "" {
		if err := session.Login(ctx, cfg.Username, cfg.Password); err != nil {
			report.Checks = append(report.Checks, Check{Severity: SeverityError, Name: "authentication", Message: fmt.Sprintf("login as %s failed: %v", cfg.Username, err)})
			return report
		}
	}
	person, err := session.Whoami(ctx)
	if err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityError, Name: "authentication", Message: fmt.Sprintf("whoami failed: %v", err)})
		return report
	}
	report.Checks = append(report.Checks, Check{Severity: SeverityInfo, Name: "authentication", Message: AuthenticatedMessage(person)})

	if err := session.FetchCSRFToken(ctx); err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityError, Name: "csrf", Message: fmt.Sprintf("csrf token unavailable: %v", err)})
		return report
	}
	report.Checks = append(report.Checks, Check{Severity: SeverityInfo, Name: "csrf", Message: "csrf token acquired"})

	info, err := session.Info(ctx)
	if err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityError, Name: "info", Message: fmt.Sprintf("failed to get ChurchTools info: %v", err)})
		return report
	}
	report.Checks = append(report.Checks, Check{Severity: SeverityInfo, Name: "info", Message: ConnectedMessage(info)})

	if cfg.SongCategory <= 0 {
		report.Checks = append(report.Checks, Check{Severity: SeverityWarn, Name: "config", Message: "song_category is not set; import will refuse to run"})
	}
	return report
}

func AuthenticatedMessage(person churchtools.Person) string {
	name := strings.TrimSpace(person.FirstName + " " + person.LastName)
	return fmt.Sprintf("Authenticated as %s (ID: %d).", name, person.ID)
}

func ConnectedMessage(info churchtools.Info) string {
	return fmt.Sprintf("Connected to ChurchTools %s of '%s'.", info.Version, info.SiteName)
}
