// Package transport answers classification requests arriving over NATS.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/nlp"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

type ClassifyRequest struct {
	RequestID string `json:"requestId"`
	Text      string `json:"text"`
}

type ClassifyReply struct {
	RequestID string      `json:"requestId"`
	Status    string      `json:"status"`
	Result    *nlp.Result `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type Classifier interface {
	Classify(text string) *nlp.Result
}

type NATSTransport struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	subject    string
	classifier Classifier
	obs        *observability.Observability
	logger     logger.Logger
}

// NewNATSTransport connects to cfg.URL. obs may be nil.
func NewNATSTransport(cfg config.NATSConfig, serviceName string, classifier Classifier, obs *observability.Observability, log logger.Logger) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name(serviceName),
		nats.Timeout(config.GetDuration(cfg.Timeout)),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.NewTransportError(cfg.ClassifySubject, fmt.Errorf("failed to connect to NATS: %w", err))
	}

	l := log.WithFields(map[string]interface{}{"component": "nats", "subject": cfg.ClassifySubject})
	l.Info("connected to NATS", map[string]interface{}{"url": cfg.URL})

	return &NATSTransport{
		conn:       conn,
		subject:    cfg.ClassifySubject,
		classifier: classifier,
		obs:        obs,
		logger:     l,
	}, nil
}

// Start subscribes to the classify subject.
func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.subject, nt.handleClassifyRequest)
	if err != nil {
		return errors.NewTransportError(nt.subject, fmt.Errorf("failed to subscribe: %w", err))
	}
	nt.sub = sub
	nt.logger.Info("subscribed", nil)
	return nil
}

func (nt *NATSTransport) handleClassifyRequest(msg *nats.Msg) {
	reply := HandleClassify(context.Background(), nt.obs, nt.classifier, msg.Data)
	if reply.Status == StatusError {
		nt.logger.Warn("rejected classify request", map[string]interface{}{"error": reply.Error})
	}

	data, err := json.Marshal(reply)
	if err != nil {
		nt.logger.Error("failed to marshal reply", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := msg.Respond(data); err != nil {
		nt.logger.Error("failed to send reply", map[string]interface{}{
			"requestId": reply.RequestID,
			"error":     err.Error(),
		})
	}
}

// HandleClassify decodes one request payload and classifies its text. A
// payload that is not a request yields an error reply.
func HandleClassify(ctx context.Context, obs *observability.Observability, classifier Classifier, payload []byte) *ClassifyReply {
	var req ClassifyRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return &ClassifyReply{Status: StatusError, Error: "invalid request format: " + err.Error()}
	}

	result := obs.Classify(ctx, "nats", classifier, req.Text)

	return &ClassifyReply{
		RequestID: req.RequestID,
		Status:    StatusOK,
		Result:    result,
	}
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		if err := nt.sub.Unsubscribe(); err != nil {
			nt.logger.Warn("unsubscribe failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if nt.conn != nil {
		if err := nt.conn.Drain(); err != nil {
			nt.conn.Close()
		}
		nt.logger.Info("NATS connection closed", nil)
	}
	return nil
}
