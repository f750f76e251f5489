// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/moov-io/base"
)

// errSkipUpload is returned from a WithEachStaged func to drop a staged event
// without archiving it as uploaded.
var errSkipUpload = errors.New("skip upload")

// Staging holds upload events between their arrival on the stream and the next cutoff.
type Staging interface {
	HandleUpload(ev *Event) error
	HandleCancel(messageID string) error

	// WithEachStaged calls fn for each staged event. Events fn succeeds on are
	// moved out of staging, failed events stay for the next cutoff.
	WithEachStaged(fn func(*Event) error) error
}

// filesystemStaging writes each event as JSON into <dir>/staged/ and moves
// delivered events into <dir>/uploaded/<yyyy-mm-dd>/.
type filesystemStaging struct {
	baseDir string
}

func newFilesystemStaging(dir string) (*filesystemStaging, error) {
	fs := &filesystemStaging{baseDir: dir}
	if err := os.MkdirAll(fs.stagedDir(), 0777); err != nil {
		return nil, fmt.Errorf("staging: %v", err)
	}
	return fs, nil
}

func (fs *filesystemStaging) stagedDir() string {
	return filepath.Join(fs.baseDir, "staged")
}

func (fs *filesystemStaging) uploadedDir(when time.Time) string {
	return filepath.Join(fs.baseDir, "uploaded", when.Format("2006-01-02"))
}

// stagedFilename encodes messageID as it commonly contains path separators.
func stagedFilename(messageID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(messageID)) + ".json"
}

func (fs *filesystemStaging) HandleUpload(ev *Event) error {
	if err := ev.validate(); err != nil {
		return err
	}
	bs, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	// write then rename so a cutoff never reads a partial file
	path := filepath.Join(fs.stagedDir(), stagedFilename(ev.MessageID))
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, bs, 0600); err != nil {
		return fmt.Errorf("staging %s: %v", ev.MessageID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("staging %s: %v", ev.MessageID, err)
	}
	return nil
}

func (fs *filesystemStaging) HandleCancel(messageID string) error {
	path := filepath.Join(fs.stagedDir(), stagedFilename(messageID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("canceling %s: %v", messageID, err)
	}
	return nil
}

func (fs *filesystemStaging) WithEachStaged(fn func(*Event) error) error {
	infos, err := ioutil.ReadDir(fs.stagedDir())
	if err != nil {
		return fmt.Errorf("staging: %v", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	var el base.ErrorList
	for i := range infos {
		if infos[i].IsDir() || !strings.HasSuffix(infos[i].Name(), ".json") {
			continue
		}
		path := filepath.Join(fs.stagedDir(), infos[i].Name())

		ev, err := readEvent(path)
		if err != nil {
			el.Add(err)
			continue
		}

		switch err := fn(ev); {
		case err == errSkipUpload:
			if err := os.Remove(path); err != nil {
				el.Add(err)
			}
		case err != nil:
			el.Add(fmt.Errorf("%s: %v", ev.MessageID, err))
		default:
			if err := fs.archive(path, infos[i].Name()); err != nil {
				el.Add(err)
			}
		}
	}
	if el.Empty() {
		return nil
	}
	return el
}

func (fs *filesystemStaging) archive(path, name string) error {
	dir := fs.uploadedDir(time.Now())
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, name))
}

func readEvent(path string) (*Event, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ev Event
	if err := json.Unmarshal(bs, &ev); err != nil {
		return nil, fmt.Errorf("reading %s: %v", filepath.Base(path), err)
	}
	if err := ev.validate(); err != nil {
		return nil, fmt.Errorf("reading %s: %v", filepath.Base(path), err)
	}
	if ev.Kind != KindUpload {
		return nil, fmt.Errorf("reading %s: staged %s event", filepath.Base(path), ev.Kind)
	}
	return &ev, nil
}
