package services

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

//go:embed prompts/*.md
var defaultPrompts embed.FS

const (
	PromptEvaluatorSystem = "evaluator_system"
	PromptEvaluatorUser   = "evaluator_user"
	PromptReviewerSystem  = "reviewer_system"
	PromptReviewerUser    = "reviewer_user"
	PromptFinalizeUser    = "finalize_user"
)

var requiredPrompts = []string{
	PromptEvaluatorSystem,
	PromptEvaluatorUser,
	PromptReviewerSystem,
	PromptReviewerUser,
	PromptFinalizeUser,
}

// PromptBuilder holds the prompt templates, loaded once at startup.
type PromptBuilder struct {
	templates map[string]string
}

// LoadPrompts reads every required template from dir, or from the embedded
// defaults when dir is empty. A missing or blank template is an error.
func LoadPrompts(dir string) (*PromptBuilder, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(defaultPrompts, "prompts")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded prompts: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return loadPrompts(fsys)
}

func loadPrompts(fsys fs.FS) (*PromptBuilder, error) {
	templates := make(map[string]string, len(requiredPrompts))
	var errs []error

	for _, name := range requiredPrompts {
		data, err := fs.ReadFile(fsys, name+".md")
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read prompt %s: %w", name, err))
			continue
		}
		if strings.TrimSpace(string(data)) == "" {
			errs = append(errs, fmt.Errorf("prompt %s is empty", name))
			continue
		}
		templates[name] = string(data)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &PromptBuilder{templates: templates}, nil
}

// Template returns the raw template text.
func (pb *PromptBuilder) Template(name string) string {
	return pb.templates[name]
}

// Render fills a template with vars using safe substitution.
func (pb *PromptBuilder) Render(name string, vars map[string]string) string {
	return SafeSubstitute(pb.templates[name], vars)
}

// BuildConversation pairs a system template with a rendered user template.
func (pb *PromptBuilder) BuildConversation(system, user string, vars map[string]string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: pb.templates[system]},
		{Role: RoleUser, Content: pb.Render(user, vars)},
	}
}

var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// SafeSubstitute replaces $name and ${name} with values from vars. Unknown
// placeholders are left as written and $$ becomes a single $.
func SafeSubstitute(tmpl string, vars map[string]string) string {
	var b strings.Builder
	last := 0

	for _, m := range placeholder.FindAllStringSubmatchIndex(tmpl, -1) {
		b.WriteString(tmpl[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			b.WriteByte('$')
		case m[4] >= 0:
			writeVar(&b, vars, tmpl[m[4]:m[5]], tmpl[m[0]:m[1]])
		default:
			writeVar(&b, vars, tmpl[m[6]:m[7]], tmpl[m[0]:m[1]])
		}
	}

	b.WriteString(tmpl[last:])
	return b.String()
}

func writeVar(b *strings.Builder, vars map[string]string, name, literal string) {
	if value, ok := vars[name]; ok {
		b.WriteString(value)
		return
	}
	b.WriteString(literal)
}
