package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var embeddedPrompts []byte

// Prompts is the prompt catalog.
type Prompts struct {
	StructureRFP     string `yaml:"structure_rfp"`
	ExtractProposal  string `yaml:"extract_proposal"`
	CompareProposals string `yaml:"compare_proposals"`
}

// ParsePrompts decodes a YAML catalog. Every prompt must be present.
func ParsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	missing := []string{}
	if strings.TrimSpace(p.StructureRFP) == "" {
		missing = append(missing, "structure_rfp")
	}
	if strings.TrimSpace(p.ExtractProposal) == "" {
		missing = append(missing, "extract_proposal")
	}
	if strings.TrimSpace(p.CompareProposals) == "" {
		missing = append(missing, "compare_proposals")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("prompt catalog is missing: %s", strings.Join(missing, ", "))
	}
	return &p, nil
}

// DefaultPrompts returns the built-in catalog.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts(embeddedPrompts)
	if err != nil {
		panic(err)
	}
	return p
}

// LoadPrompts reads a catalog from path, or returns the built-in one when path is empty.
func LoadPrompts(path string) (*Prompts, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt catalog %s: %w", path, err)
	}
	return ParsePrompts(data)
}

func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
