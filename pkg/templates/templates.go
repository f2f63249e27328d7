// Package templates renders the starter files written by "hubhook init".
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"hubhook/pkg/fileutil"
)

// Template names
const (
	Config         = "config"
	SystemdService = "systemd-service"
)

//go:embed files/*.template
var builtin embed.FS

// ConfigData fills the config template
type ConfigData struct {
	Host        string
	Port        int
	AppSecret   string
	VerifyToken string
	Channels    []string
	StoreDriver string
	StorePath   string
	LogFile     string
}

// ServiceData fills the systemd unit template
type ServiceData struct {
	User       string
	Group      string
	WorkingDir string
	Binary     string
	ConfigFile string
}

// GetTemplatePaths returns the override search paths for a template
func GetTemplatePaths(templateName string) []string {
	filename := templateName + ".template"
	return []string{
		filepath.Join(".", "templates", filename),
		filepath.Join(".", "config", "templates", filename),
		filepath.Join(fileutil.SystemConfigDir, "templates", filename),
	}
}

// GetTemplate returns the raw template content by name.
// A file in one of the search paths overrides the built-in template:
// 1. ./templates/<name>.template
// 2. ./config/templates/<name>.template
// 3. /etc/hubhook/templates/<name>.template
func GetTemplate(name string) (string, error) {
	if !ValidateTemplate(name) {
		return "", fmt.Errorf("unknown template: %s", name)
	}

	if path := fileutil.SearchPathsOptional(GetTemplatePaths(name)); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading template %s: %w", path, err)
		}
		return string(content), nil
	}

	content, err := builtin.ReadFile("files/" + name + ".template")
	if err != nil {
		return "", fmt.Errorf("built-in template missing: %s", name)
	}
	return string(content), nil
}

// Render renders a template with data using text/template
func Render(templateName string, data interface{}) (string, error) {
	tmplContent, err := GetTemplate(templateName)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(templateName).Option("missingkey=error").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// RenderConfig renders a starter hubhook.yaml
func RenderConfig(data ConfigData) (string, error) {
	return Render(Config, data)
}

// RenderSystemdService renders the systemd unit
func RenderSystemdService(data ServiceData) (string, error) {
	return Render(SystemdService, data)
}

// ListTemplates returns a list of all available template names.
func ListTemplates() []string {
	return []string{
		Config,
		SystemdService,
	}
}

// ValidateTemplate checks if a template name is valid.
func ValidateTemplate(name string) bool {
	for _, n := range ListTemplates() {
		if n == name {
			return true
		}
	}
	return false
}
