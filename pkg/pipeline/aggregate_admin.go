// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"net/http"

	"github.com/moov-io/base/admin"
	moovhttp "github.com/moov-io/base/http"
)

func (agg *Aggregator) RegisterRoutes(svc *admin.Server) {
	svc.AddHandler("/trigger-cutoff", agg.triggerManualCutoff())
}

type manuallyTriggeredCutoff struct {
	C chan error
}

func (agg *Aggregator) triggerManualCutoff() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			moovhttp.Problem(w, fmt.Errorf("invalid method %s", r.Method))
			return
		}

		// send off the manual request
		waiter := manuallyTriggeredCutoff{
			C: make(chan error, 1),
		}
		select {
		case agg.cutoffTrigger <- waiter:
		case <-r.Context().Done():
			moovhttp.Problem(w, r.Context().Err())
			return
		}

		select {
		case err := <-waiter.C:
			if err != nil {
				moovhttp.Problem(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)

		case <-r.Context().Done():
			moovhttp.Problem(w, r.Context().Err())
		}
	}
}
