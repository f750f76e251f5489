// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/pkg/credittransfer"
	"github.com/moov-io/sepa/pkg/database"
	"github.com/moov-io/sepa/pkg/model"
	"github.com/moov-io/sepa/pkg/schema"
	"github.com/moov-io/sepa/pkg/util"
	"github.com/moov-io/sepa/pkg/validator"
	"github.com/moov-io/sepa/x/route"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	messagesCreated = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "messages_created",
		Help: "Counter of pain.001 messages rendered and stored",
	}, []string{"schema"})
)

// Publisher hands stored messages off for delivery.
type Publisher interface {
	Upload(msg *Message) error
	Cancel(messageID string) error
}

type Router struct {
	logger    log.Logger
	cfg       config.SEPA
	countries credittransfer.CountrySet

	repo Repository
	pub  Publisher
}

// NewRouter returns a Router for the messages API. pub can be nil, in which case messages
// are only stored.
func NewRouter(logger log.Logger, cfg config.SEPA, repo Repository, pub Publisher) *Router {
	countries := credittransfer.DefaultCountries
	if c := cfg.Countries; c != nil {
		countries = credittransfer.NewCountrySet(c.Version, c.Codes...)
	}
	return &Router{
		logger:    logger,
		cfg:       cfg,
		countries: countries,
		repo:      repo,
		pub:       pub,
	}
}

func (c *Router) RegisterRoutes(r *mux.Router) {
	r.Methods("GET").Path("/messages").HandlerFunc(c.getMessages())
	r.Methods("POST").Path("/messages").HandlerFunc(c.createMessage())
	r.Methods("GET").Path("/messages/{messageID:.+}/document").HandlerFunc(c.getDocument())
	r.Methods("GET").Path("/messages/{messageID:.+}").HandlerFunc(c.getMessage())
	r.Methods("DELETE").Path("/messages/{messageID:.+}").HandlerFunc(c.deleteMessage())
	r.Methods("POST").Path("/validate").HandlerFunc(c.validate())
}

func getMessageID(r *http.Request) string {
	return mux.Vars(r)["messageID"]
}

func (c *Router) getMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		params, err := readListParams(r)
		if err != nil {
			responder.Problem(err)
			return
		}
		msgs, err := c.repo.ListMessages(params)
		if err != nil {
			responder.Log("messages", fmt.Sprintf("problem listing messages: %v", err))
			responder.Problem(err)
			return
		}
		if msgs == nil {
			msgs = []*Message{}
		}
		responder.JSON(http.StatusOK, msgs)
	}
}

func readListParams(r *http.Request) (ListParams, error) {
	var params ListParams
	if v := r.URL.Query().Get("status"); v != "" {
		params.Status = Status(strings.ToLower(v))
		if !params.Status.Valid() {
			return params, fmt.Errorf("unknown status %q", v)
		}
	}
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, fmt.Errorf("invalid count %q", v)
		}
		params.Count = n
	}
	return params, nil
}

type createMessage struct {
	MessageID    string                `json:"messageID"`
	Schema       string                `json:"schema"`
	Account      model.Account         `json:"account"`
	Transactions []*transactionRequest `json:"transactions"`
}

type transactionRequest struct {
	model.Transaction

	// BatchBooking is optional in requests and defaults to model.DefaultBatchBooking.
	BatchBooking *bool `json:"batchBooking,omitempty"`
}

func (req *transactionRequest) transaction() *model.Transaction {
	tx := req.Transaction
	tx.BatchBooking = model.DefaultBatchBooking
	if req.BatchBooking != nil {
		tx.BatchBooking = *req.BatchBooking
	}
	return &tx
}

type validationProblem struct {
	Error  string           `json:"error"`
	Errors validator.Errors `json:"errors"`
}

func (c *Router) createMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		var req createMessage
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responder.Problem(err)
			return
		}
		desc, err := schema.Lookup(util.Or(req.Schema, c.cfg.Schema))
		if err != nil {
			responder.Problem(err)
			return
		}

		msg, err := c.buildMessage(req)
		if err != nil {
			var fieldErrs validator.Errors
			if errors.As(err, &fieldErrs) {
				responder.JSON(http.StatusBadRequest, validationProblem{
					Error:  fieldErrs.Error(),
					Errors: fieldErrs,
				})
				return
			}
			responder.Problem(err)
			return
		}

		total := msg.AmountTotal()
		if over, err := c.cfg.Limits.OverHardLimit(total); over || err != nil {
			if err == nil {
				err = fmt.Errorf("control sum %s is over the hard limit", total.StringFixed(2))
			}
			responder.Problem(err)
			return
		}

		doc, err := msg.ToXML(desc, c.countries)
		if err != nil {
			responder.Log("messages", fmt.Sprintf("problem rendering %s: %v", msg.ID, err))
			responder.Problem(err)
			return
		}

		record := &Message{
			MessageID:            msg.ID,
			Schema:               string(desc.Name),
			Status:               Pending,
			DebtorName:           msg.Account.Name,
			DebtorIBAN:           msg.Account.IBAN,
			NumberOfTransactions: len(msg.Transactions),
			ControlSum:           total.StringFixed(2),
			CreatedAt:            msg.CreatedAt,
			Document:             doc,
		}
		if err := c.repo.SaveMessage(record); err != nil {
			if database.UniqueViolation(err) {
				err = fmt.Errorf("message %s already exists", record.MessageID)
			}
			responder.Problem(err)
			return
		}
		if c.pub != nil {
			if err := c.pub.Upload(record); err != nil {
				responder.Log("messages", fmt.Sprintf("problem publishing %s: %v", record.MessageID, err))
				if err := c.repo.DeleteMessage(record.MessageID); err != nil {
					responder.Log("messages", fmt.Sprintf("problem canceling %s: %v", record.MessageID, err))
				}
				responder.JSON(http.StatusInternalServerError, map[string]string{
					"error": "unable to publish message",
				})
				return
			}
		}

		messagesCreated.With("schema", record.Schema).Add(1)
		responder.Log("messages", fmt.Sprintf("created message %s with %d transactions", record.MessageID, record.NumberOfTransactions))
		responder.JSON(http.StatusOK, record)
	}
}

// buildMessage normalizes the request, applies defaults and validates the resulting
// message. Invalid fields are returned as validator.Errors.
func (c *Router) buildMessage(req createMessage) (*credittransfer.Message, error) {
	msg := &credittransfer.Message{
		ID:        strings.TrimSpace(req.MessageID),
		CreatedAt: time.Now(),
		Account:   req.Account,
	}
	if msg.ID == "" {
		msg.ID = credittransfer.NewMessageID(util.Or(c.cfg.MessageIDPrefix, credittransfer.DefaultMessageIDPrefix))
	}
	msg.Account.Normalize()
	for i := range req.Transactions {
		if req.Transactions[i] == nil {
			return nil, validator.Errors{{Field: fmt.Sprintf("transactions[%d]", i), Message: "is missing"}}
		}
		tx := req.Transactions[i].transaction()
		tx.Normalize()
		tx.SetDefaults()
		msg.Transactions = append(msg.Transactions, tx)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Router) getMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		msg, err := c.repo.GetMessage(getMessageID(r))
		if err != nil {
			responder.Problem(err)
			return
		}
		if msg == nil {
			responder.NotFound()
			return
		}
		if strings.Contains(r.Header.Get("Accept"), "xml") {
			writeDocument(responder, msg)
			return
		}
		responder.JSON(http.StatusOK, msg)
	}
}

func (c *Router) getDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		msg, err := c.repo.GetMessage(getMessageID(r))
		if err != nil {
			responder.Problem(err)
			return
		}
		if msg == nil {
			responder.NotFound()
			return
		}
		writeDocument(responder, msg)
	}
}

func writeDocument(responder *route.Responder, msg *Message) {
	responder.Respond(func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(msg.Document)
	})
}

func (c *Router) deleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		messageID := getMessageID(r)
		msg, err := c.repo.GetMessage(messageID)
		if err != nil {
			responder.Problem(err)
			return
		}
		if msg == nil {
			responder.NotFound()
			return
		}
		if err := c.repo.DeleteMessage(messageID); err != nil {
			if err == ErrNotPending {
				err = fmt.Errorf("message %s is %s", messageID, msg.Status)
			}
			responder.Problem(err)
			return
		}
		if c.pub != nil {
			if err := c.pub.Cancel(messageID); err != nil {
				responder.Log("messages", fmt.Sprintf("problem publishing cancel of %s: %v", messageID, err))
			}
		}

		responder.Log("messages", fmt.Sprintf("canceled message %s", messageID))
		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
		})
	}
}
