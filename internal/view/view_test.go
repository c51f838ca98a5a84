package view_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/msomdec/meta-pet-registry/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRegisterPage_EscapesValues(t *testing.T) {
	html := render(t, view.RegisterPage(view.RegisterForm{
		PetName:    `"><script>alert(1)</script>`,
		MemorySeed: "</textarea><b>",
	}, []string{"<bad>"}))

	if strings.Contains(html, "<script>alert(1)") || strings.Contains(html, "</textarea><b>") || strings.Contains(html, "<bad>") {
		t.Fatalf("unescaped user input in output:\n%s", html)
	}
	if !strings.Contains(html, `action="/register"`) {
		t.Fatal("expected form posting to /register")
	}
}

func TestFormErrors(t *testing.T) {
	empty := render(t, view.FormErrors(nil))
	if strings.Contains(empty, "<li>") {
		t.Fatalf("expected no list items, got %s", empty)
	}

	html := render(t, view.FormErrors([]string{"one", "two"}))
	if strings.Count(html, "<li>") != 2 || !strings.Contains(html, `id="form-errors"`) {
		t.Fatalf("unexpected errors markup: %s", html)
	}
}

func TestSuccessPage(t *testing.T) {
	html := render(t, view.SuccessPage("Ab3xQ9mK2pLw", "/scroll/Ab3xQ9mK2pLw.pdf", "/verify?token=x.y.z"))
	for _, want := range []string{"Ab3xQ9mK2pLw", `href="/scroll/Ab3xQ9mK2pLw.pdf"`, `href="/verify?token=x.y.z"`} {
		if !strings.Contains(html, want) {
			t.Errorf("success page missing %q", want)
		}
	}
}

func TestVerifyPage(t *testing.T) {
	if html := render(t, view.VerifyPage(view.VerifyResult{})); !strings.Contains(html, "NOT VERIFIED") {
		t.Fatal("expected invalid verification message")
	}
	html := render(t, view.VerifyPage(view.VerifyResult{Valid: true, PetID: "Ab3xQ9mK2pLw", PetName: "Milo", Proof: "fb98d44ad7501a95"}))
	if !strings.Contains(html, "VERIFIED") || !strings.Contains(html, "fb98d44ad7501a95") {
		t.Fatalf("unexpected verify page: %s", html)
	}
}

func TestRegisterPage_BindsSignals(t *testing.T) {
	html := render(t, view.RegisterPage(view.RegisterForm{OwnerEmail: "a@b.com"}, nil))

	for _, want := range []string{
		`name="owner_email" type="email" value="a@b.com" data-bind="ownerEmail" required>`,
		`name="owner_handle" type="text" value="" data-bind="ownerHandle">`,
		`data-bind="petName" required>`,
		`data-bind="memorySeed"`,
		`data-on:input__debounce.400ms="@post('/register/validate')"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("register page missing %q", want)
		}
	}
}

func TestSuccessPage_SanitizesLinks(t *testing.T) {
	html := render(t, view.SuccessPage("Ab3xQ9mK2pLw", "javascript:alert(1)", "/verify?token=a&b"))

	if strings.Contains(html, "javascript:") {
		t.Fatalf("unsafe link rendered:\n%s", html)
	}
	if !strings.Contains(html, `href="/verify?token=a&amp;b"`) {
		t.Fatalf("expected escaped verification link:\n%s", html)
	}
}
