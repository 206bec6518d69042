package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

func TestBuiltinTemplates(t *testing.T) {
	want := []string{"bug", "feature", "refactor", "research"}
	got, err := Names("")
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	for name, tmpl := range Builtin {
		if !tmpl.Priority.IsValid() {
			t.Errorf("template %s has invalid priority %q", name, tmpl.Priority)
		}
		if tmpl.Label == "" || tmpl.DescriptionPrefix == "" {
			t.Errorf("template %s is missing label or description", name)
		}
	}
}

func TestGetUnknownTemplate(t *testing.T) {
	if _, err := Get("epic", ""); err == nil {
		t.Error("expected error for unknown template")
	}
	tmpl, err := Get("BUG", "")
	if err != nil {
		t.Fatalf("Get is case-insensitive: %v", err)
	}
	if tmpl.Priority != types.PriorityHigh {
		t.Errorf("bug priority = %s, want high", tmpl.Priority)
	}
}

func TestApply(t *testing.T) {
	bug := Builtin["bug"]
	userDesc := "crashes on start"

	tests := []struct {
		name         string
		tmpl         *Template
		desc         *string
		priority     types.Priority
		wantPriority types.Priority
		wantDesc     string
	}{
		{
			name:         "template priority replaces default",
			tmpl:         &bug,
			priority:     types.PriorityMedium,
			wantPriority: types.PriorityHigh,
			wantDesc:     bug.DescriptionPrefix,
		},
		{
			name:         "explicit priority wins",
			tmpl:         &bug,
			priority:     types.PriorityCritical,
			wantPriority: types.PriorityCritical,
			wantDesc:     bug.DescriptionPrefix,
		},
		{
			name:         "user description appended",
			tmpl:         &bug,
			desc:         &userDesc,
			priority:     types.PriorityMedium,
			wantPriority: types.PriorityHigh,
			wantDesc:     bug.DescriptionPrefix + "\n\ncrashes on start",
		},
		{
			name:         "no template",
			desc:         &userDesc,
			priority:     types.PriorityLow,
			wantPriority: types.PriorityLow,
			wantDesc:     userDesc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, priority := Apply(tt.tmpl, tt.desc, tt.priority)
			if priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", priority, tt.wantPriority)
			}
			if desc == nil || *desc != tt.wantDesc {
				t.Errorf("description = %v, want %q", desc, tt.wantDesc)
			}
		})
	}
}

func TestUserTemplatesOverrideBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	content := `
[templates.chore]
label = "chore"
description_prefix = "Why: "

[templates.bug]
priority = "critical"
label = "defect"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	all, err := All(path)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("got %d templates, want 5", len(all))
	}

	chore := all["chore"]
	if chore.Name != "chore" || chore.Priority != types.DefaultPriority {
		t.Errorf("chore = %+v, want name and default priority filled in", chore)
	}
	if bug := all["bug"]; bug.Priority != types.PriorityCritical || bug.Label != "defect" {
		t.Errorf("bug = %+v, want user override", bug)
	}
}

func TestLoadUserErrors(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadUser(filepath.Join(dir, "nope.toml"))
	if err != nil || missing != nil {
		t.Errorf("missing file = %v, %v, want nil, nil", missing, err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[templates.x]\npriority = \"urgent\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadUser(bad); err == nil {
		t.Error("expected invalid priority error")
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[templates\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadUser(broken); err == nil {
		t.Error("expected parse error")
	}
}
