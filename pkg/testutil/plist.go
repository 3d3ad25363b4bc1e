package testutil

import (
	"encoding/xml"
	"sort"
	"strings"
)

// Plist renders a flat string dictionary as an XML property list
func Plist(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n<dict>\n")
	for _, k := range keys {
		b.WriteString("\t<key>")
		_ = xml.EscapeText(&b, []byte(k))
		b.WriteString("</key>\n\t<string>")
		_ = xml.EscapeText(&b, []byte(values[k]))
		b.WriteString("</string>\n")
	}
	b.WriteString("</dict>\n</plist>\n")
	return b.String()
}
