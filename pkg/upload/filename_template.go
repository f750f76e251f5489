// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/moov-io/sepa/pkg/config"
)

// DefaultFilenameTemplate names uploads after the time and their message identification.
const DefaultFilenameTemplate = `{{ date "20060102-150405" }}-{{ safe .MessageID }}.xml{{ if .GPG }}.gpg{{ end }}`

type FilenameData struct {
	MessageID string
	Schema    string

	// GPG is true if the file has been encrypted with GPG
	GPG bool
}

var filenameFunctions template.FuncMap = map[string]interface{}{
	"date": func(pattern string) string {
		return time.Now().Format(pattern)
	},
	"env": func(name string) string {
		return os.Getenv(name)
	},
	// message identifications may contain characters which aren't allowed in filenames
	"safe": func(s string) string {
		return filenameReplacer.Replace(s)
	},
}

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "?", "_", "'", "", " ", "_")

// FilenameTemplate returns the configured template or DefaultFilenameTemplate.
func FilenameTemplate(cfg *config.Upload) string {
	if cfg == nil || cfg.FilenameTemplate == "" {
		return DefaultFilenameTemplate
	}
	return cfg.FilenameTemplate
}

func RenderFilename(raw string, data FilenameData) (string, error) {
	t, err := template.New(data.MessageID).Funcs(filenameFunctions).Parse(raw)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
