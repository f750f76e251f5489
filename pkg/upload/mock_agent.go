// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"io/ioutil"
	"sync"
)

type MockAgent struct {
	Uploads     map[string][]byte // filename to contents
	DeletedFile string            // filepath of last deleted file
	mu          sync.RWMutex      // protects all fields

	Err error
}

func (a *MockAgent) UploadFile(f File) error {
	defer f.Close()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	bs, err := ioutil.ReadAll(f.Contents)
	if err != nil {
		return err
	}
	if a.Uploads == nil {
		a.Uploads = make(map[string][]byte)
	}
	a.Uploads[f.Filename] = bs
	return nil
}

// Uploaded returns the contents of an uploaded file and if it was found.
func (a *MockAgent) Uploaded(filename string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	bs, ok := a.Uploads[filename]
	return bytes.TrimSpace(bs), ok
}

func (a *MockAgent) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.Uploads)
}

func (a *MockAgent) Delete(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.DeletedFile = path
	return a.Err
}

func (a *MockAgent) OutboundPath() string {
	return "outbound/"
}

func (a *MockAgent) Hostname() string {
	return "sftp.bank.com"
}

func (a *MockAgent) Ping() error {
	return a.Err
}

func (a *MockAgent) Close() error {
	return nil
}
