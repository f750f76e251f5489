// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestSlack(t *testing.T) {
	var bodies []string
	handler := mux.NewRouter()
	handler.Methods("POST").Path("/webhook").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bs, _ := ioutil.ReadAll(r.Body)
		if bytes.Contains(bs, []byte(`"text"`)) {
			bodies = append(bodies, string(bs))
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	svc := httptest.NewServer(handler)
	defer svc.Close()

	cfg := &config.Slack{
		WebhookURL: svc.URL + "/webhook",
	}
	slack, err := NewSlack(cfg)
	require.NoError(t, err)

	msg := testMessage()
	require.NoError(t, slack.Info(msg))
	require.NoError(t, slack.Critical(msg))

	require.Len(t, bodies, 2)
	require.Contains(t, bodies[0], "successful upload of 20200529-131400-MOOV_1.xml")
	require.Contains(t, bodies[1], "failed upload of 20200529-131400-MOOV_1.xml")

	// unknown path
	slack, err = NewSlack(&config.Slack{WebhookURL: svc.URL + "/other"})
	require.NoError(t, err)
	require.Error(t, slack.Info(msg))

	_, err = NewSlack(nil)
	require.Error(t, err)
}

func TestSlack__marshal(t *testing.T) {
	tests := []struct {
		desc          string
		status        uploadStatus
		msg           *Message
		shouldContain string
	}{
		{"successful upload with hostname", success, &Message{Direction: Upload, Filename: "myfile.xml", Hostname: "ftp.mybank.com"},
			"successful upload of myfile.xml to ftp.mybank.com"},
		{"failed upload with hostname", failed, &Message{Direction: Upload, Filename: "myfile.xml", Hostname: "ftp.mybank.com"},
			"failed upload of myfile.xml to ftp.mybank.com"},
		{"failed upload", failed, &Message{Direction: Upload, Filename: "myfile.xml"},
			"failed upload of myfile.xml"},
		{"message details", success, testMessage(),
			"(message MOOV/1 with 2 transactions totaling 161.50)"},
	}

	for _, test := range tests {
		actual := marshalSlackMessage(test.status, test.msg)
		require.Contains(t, actual, test.shouldContain, test.desc)
	}
}
