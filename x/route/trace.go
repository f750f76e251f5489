// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"strings"

	"github.com/moov-io/sepa/x/trace"

	opentracing "github.com/opentracing/opentracing-go"
)

// Span starts the server span for this request, named like "post-messages" and
// continuing any trace the caller propagated.
func (r *Responder) Span() opentracing.Span {
	name := fmt.Sprintf("%s-%s", strings.ToLower(r.request.Method), CleanPath(r.request.URL.Path))

	span := trace.FromRequest(name, r.request)
	if r.XRequestID != "" {
		span.SetTag("requestID", r.XRequestID)
	}
	return span
}
