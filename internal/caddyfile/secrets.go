package caddyfile

import (
	"fmt"
	"regexp"
	"strings"
)

// SensitivePattern is a pattern that suggests a credential written inline.
type SensitivePattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

var sensitivePatterns = []SensitivePattern{
	{
		Name:        "Bearer Token",
		Pattern:     regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{16,}`),
		Description: "Bearer token in a header directive",
	},
	{
		Name:        "API Key",
		Pattern:     regexp.MustCompile(`(?i)(x-api-key|api[_-]?key|apikey)"?\s+"?[A-Za-z0-9_-]{16,}`),
		Description: "API key in a header directive",
	},
	{
		Name:        "URL Credentials",
		Pattern:     regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]+@`),
		Description: "Username and password embedded in an upstream URL",
	},
	{
		Name:        "AWS Key",
		Pattern:     regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Description: "AWS access key id",
	},
	{
		Name:        "GitHub Token",
		Pattern:     regexp.MustCompile(`gh[ps]_[a-zA-Z0-9]{36,}`),
		Description: "GitHub token",
	},
}

// SensitiveDataFinding is one suspicious line.
type SensitiveDataFinding struct {
	PatternName string `json:"pattern" yaml:"pattern"`
	Description string `json:"description" yaml:"description"`
	Line        int    `json:"line" yaml:"line"`
	Preview     string `json:"preview" yaml:"preview"` // directive name with the rest redacted
}

// DetectSensitiveData scans raw Caddyfile text for inline credentials.
// Comment lines are ignored.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding

	for lineNum, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if skippable(trimmed) {
			continue
		}
		for _, pattern := range sensitivePatterns {
			if pattern.Pattern.MatchString(trimmed) {
				findings = append(findings, SensitiveDataFinding{
					PatternName: pattern.Name,
					Description: pattern.Description,
					Line:        lineNum + 1,
					Preview:     redactDirective(trimmed),
				})
			}
		}
	}

	return findings
}

func redactDirective(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 1 {
		return fields[0]
	}
	return fields[0] + " [REDACTED]"
}

// FormatSensitiveDataWarning renders findings as a multi-line warning.
func FormatSensitiveDataWarning(findings []SensitiveDataFinding) string {
	if len(findings) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Potential credentials found in the Caddyfile:\n\n")
	for i, f := range findings {
		sb.WriteString(fmt.Sprintf("%d. %s (line %d)\n", i+1, f.Description, f.Line))
		sb.WriteString(fmt.Sprintf("   %s\n", f.Preview))
	}
	sb.WriteString("\nPrefer {env.NAME} placeholders over inline secrets.\n")
	return sb.String()
}
