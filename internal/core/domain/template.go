package domain

import "strings"

// TemplatePageSuffix marks an index page whose frames declare template/group pairs.
const TemplatePageSuffix = "Template"

// Template is a named set of asset groups, e.g. "Single Event Fixture Title".
type Template struct {
	Name   string          `json:"name"`
	Groups []TemplateGroup `json:"groups"`
}

// TemplateGroup is one group of interchangeable assets, e.g. "Wedge1".
type TemplateGroup struct {
	Name   string            `json:"name"`
	Assets []DiscoveredAsset `json:"assets"`
}

// SplitPath splits a slash-delimited node name into its leading segments
// and its last segment. ok is false when the name has no delimiter or
// either side is empty.
func SplitPath(name string) (prefix, last string, ok bool) {
	i := strings.LastIndex(name, "/")
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// SplitPair splits a "Template/Group" name on its first delimiter.
func SplitPair(name string) (template, group string, ok bool) {
	template, group, found := strings.Cut(name, "/")
	if !found || template == "" || group == "" {
		return "", "", false
	}
	return template, group, true
}
