package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pemira-app/pemira/internal/shared"
)

func TestRenderLandingPage(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/landing.html", TemplateData{
		Title:   "Pemira",
		Session: shared.Anonymous(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Pemilihan Raya Mahasiswa") {
		t.Errorf("landing page missing heading, got: %.200s", body)
	}
	if !strings.Contains(body, `href="/login"`) {
		t.Error("landing page should link to the login page")
	}
}

func TestRenderNavPerRole(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	cases := []struct {
		name     string
		session  shared.Session
		want     []string
		dontWant []string
	}{
		{
			name:     "anonymous",
			session:  shared.Anonymous(),
			want:     []string{`href="/login"`},
			dontWant: []string{`href="/users"`, `href="/dashboard"`},
		},
		{
			name:     "voter",
			session:  shared.Session{LoggedIn: true, UserID: "u1", Role: shared.RoleVoter, Name: "Budi"},
			want:     []string{`href="/dashboard"`, "Budi"},
			dontWant: []string{`href="/users"`, `href="/elections/manage"`},
		},
		{
			name:    "admin",
			session: shared.Session{LoggedIn: true, UserID: "a1", Role: shared.RoleAdmin, Name: "Sari"},
			want:    []string{`href="/users"`, `href="/elections/manage"`, `href="/jobs"`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := engine.Render(rec, "pages/dashboard.html", TemplateData{
				Title:   "Dasbor",
				Session: tc.session,
				Data:    map[string]any{},
			}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			body := rec.Body.String()
			for _, want := range tc.want {
				if !strings.Contains(body, want) {
					t.Errorf("expected %q in output", want)
				}
			}
			for _, dont := range tc.dontWant {
				if strings.Contains(body, dont) {
					t.Errorf("did not expect %q in output", dont)
				}
			}
		})
	}
}

func TestEveryPageTemplateIsDefined(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	pages := []string{
		"pages/landing.html",
		"pages/login.html",
		"pages/forgot_password.html",
		"pages/request_account.html",
		"pages/about.html",
		"pages/faq.html",
		"pages/terms.html",
		"pages/privacy.html",
		"pages/dashboard.html",
		"pages/profile.html",
		"pages/users_list.html",
		"pages/users_form.html",
		"pages/elections_list.html",
		"pages/elections_detail.html",
		"pages/elections_results.html",
		"pages/elections_manage.html",
		"pages/elections_form.html",
		"pages/elections_manage_detail.html",
		"pages/jobs.html",
	}
	for _, name := range pages {
		if engine.templates.Lookup(name) == nil {
			t.Errorf("template %s is not defined", name)
		}
	}
}
