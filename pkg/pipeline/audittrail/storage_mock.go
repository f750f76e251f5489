// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package audittrail

type MockStorage struct {
	Saved map[string][]byte
	Err   error
}

func (s *MockStorage) Close() error {
	return s.Err
}

func (s *MockStorage) SaveFile(filename string, doc []byte) error {
	if s.Err != nil {
		return s.Err
	}
	if s.Saved == nil {
		s.Saved = make(map[string][]byte)
	}
	s.Saved[filename] = doc
	return nil
}
