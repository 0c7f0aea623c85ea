package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/jaa/ctsong/internal/churchtools"
	"github.com/jaa/ctsong/internal/config"
)

type fakeSession struct {
	loginErr  error
	whoamiErr error
	csrfErr   error
	infoErr   error
	logins    []string
}

func (s *fakeSession) Login(ctx context.Context, username, password string) error {
	s.logins = append(s.logins, username+":"+password)
	return s.loginErr
}

func (s *fakeSession) Whoami(ctx context.Context) (churchtools.Person, error) {
	return churchtools.Person{ID: 42, FirstName: "Ada", LastName: "Lovelace"}, s.whoamiErr
}

func (s *fakeSession) FetchCSRFToken(ctx context.Context) error {
	return s.csrfErr
}

func (s *fakeSession) Info(ctx context.Context) (churchtools.Info, error) {
	return churchtools.Info{Version: "3.100.0", SiteName: "Test Church"}, s.infoErr
}

func tokenConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.APIURL = "https://example.church.tools/api"
	cfg.APIToken = "token"
	cfg.SongCategory = 1
	return cfg
}

func TestDoctorConnects(t *testing.T) {
	session := &fakeSession{}
	report := NewChecker().Check(context.Background(), tokenConfig(), session)

	if report.HasErrors() {
		t.Fatalf("unexpected errors %+v", report.Checks)
	}
	if len(session.logins) != 0 {
		t.Fatalf("expected no login with token auth, got %v", session.logins)
	}
	last := report.Checks[len(report.Checks)-1]
	if last.Name != "info" || last.Message != "Connected to ChurchTools 3.100.0 of 'Test Church'." {
		t.Fatalf("unexpected last check %+v", last)
	}
	if report.Checks[1].Message != "Authenticated as Ada Lovelace (ID: 42)." {
		t.Fatalf("unexpected authentication message %q", report.Checks[1].Message)
	}
}

func TestDoctorLogsInWithUsername(t *testing.T) {
	cfg := tokenConfig()
	cfg.APIToken = ""
	cfg.Username = "ada"
	cfg.Password = "pw"

	session := &fakeSession{}
	report := NewChecker().Check(context.Background(), cfg, session)
	if report.HasErrors() {
		t.Fatalf("unexpected errors %+v", report.Checks)
	}
	if len(session.logins) != 1 || session.logins[0] != "ada:pw" {
		t.Fatalf("expected login, got %v", session.logins)
	}
}

func TestDoctorStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		session  *fakeSession
		wantName string
	}{
		{name: "invalid config", cfg: config.DefaultConfig(), session: &fakeSession{}, wantName: "config"},
		{name: "whoami", cfg: tokenConfig(), session: &fakeSession{whoamiErr: errors.New("401")}, wantName: "authentication"},
		{name: "csrf", cfg: tokenConfig(), session: &fakeSession{csrfErr: churchtools.ErrNoCSRFToken}, wantName: "csrf"},
		{name: "info", cfg: tokenConfig(), session: &fakeSession{infoErr: errors.New("503")}, wantName: "info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := NewChecker().Check(context.Background(), tc.cfg, tc.session)
			if report.ErrorCount() != 1 {
				t.Fatalf("expected exactly one error, got %+v", report.Checks)
			}
			failed, _ := report.FirstError()
			if failed.Name != tc.wantName {
				t.Fatalf("expected %s failure, got %+v", tc.wantName, failed)
			}
			if last := report.Checks[len(report.Checks)-1]; last != failed {
				t.Fatalf("expected report to end at the failure, got %+v", report.Checks)
			}
		})
	}
}

func TestDoctorWarnsWithoutSongCategory(t *testing.T) {
	cfg := tokenConfig()
	cfg.SongCategory = 0

	report := NewChecker().Check(context.Background(), cfg, &fakeSession{})
	if report.HasErrors() {
		t.Fatalf("unexpected errors %+v", report.Checks)
	}
	last := report.Checks[len(report.Checks)-1]
	if last.Severity != SeverityWarn {
		t.Fatalf("expected trailing warning, got %+v", last)
	}
}
