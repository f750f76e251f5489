// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package route

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

// PingRoute answers PONG on GET /ping (and an empty body on HEAD) for load balancer checks.
func PingRoute(logger log.Logger, r *mux.Router) {
	r.Methods("GET", "HEAD").Path("/ping").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responder := NewResponder(logger, w, req)
		responder.Respond(func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			if req.Method == http.MethodGet {
				w.Write([]byte("PONG"))
			}
		})
	})
}
