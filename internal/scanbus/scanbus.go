// Package scanbus receives tag scans published by field readers over NATS
package scanbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/models"
	"rfid-logbook/internal/nfc"
	"rfid-logbook/internal/services"
)

// Connect opens a NATS connection; token is optional
func Connect(url, token string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("rfid-logbook"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("⚠️ NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("🔌 NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	return nats.Connect(url, opts...)
}

// Reply is sent back when a scan message carries a reply subject
type Reply struct {
	Status *models.ScanStatus `json:"status,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Subscriber feeds scans from a subject into the logbook
type Subscriber struct {
	conn     *nats.Conn
	subject  string
	scans    services.ScanHandler
	debounce *nfc.Debouncer
	validate *validator.Validate
	sub      *nats.Subscription
}

// NewSubscriber creates a subscriber; debounce may be nil
func NewSubscriber(conn *nats.Conn, subject string, scans services.ScanHandler, debounce *nfc.Debouncer) *Subscriber {
	return &Subscriber{
		conn:     conn,
		subject:  subject,
		scans:    scans,
		debounce: debounce,
		validate: validator.New(),
	}
}

// Start subscribes to the scan subject
func (s *Subscriber) Start() error {
	sub, err := s.conn.Subscribe(s.subject, s.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.sub = sub
	log.Infof("📡 Listening for scans on %s", s.subject)
	return nil
}

// Drain closes the connection once in-flight scans have been handled.
// It waits at most timeout.
func (s *Subscriber) Drain(timeout time.Duration) error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		return fmt.Errorf("drain %s: %w", s.subject, err)
	}

	deadline := time.Now().Add(timeout)
	for !s.conn.IsClosed() {
		if time.Now().After(deadline) {
			s.conn.Close()
			return fmt.Errorf("drain %s: timed out after %s", s.subject, timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.sub = nil
	if s.debounce != nil {
		s.debounce.Reset()
	}
	log.Infof("📡 Stopped listening on %s", s.subject)
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	reply, handled := s.process(msg.Data)
	if !handled || msg.Reply == "" {
		return
	}

	data, err := json.Marshal(reply)
	if err != nil {
		log.Errorf("Error encoding scan reply %s", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Warnf("⚠️ Scan reply failed: %v", err)
	}
}

// process handles one scan payload. It reports false for debounced repeats,
// which get no reply.
func (s *Subscriber) process(data []byte) (Reply, bool) {
	var req models.ScanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Errorf("Error scan message %s", err)
		return Reply{Error: "invalid scan message"}, true
	}
	if err := s.validate.Struct(&req); err != nil {
		log.Warnf("⚠️ Rejected scan from %q: %v", req.Reader, err)
		return Reply{Error: "invalid scan message"}, true
	}

	uid := req.UID
	if uid == "" {
		uid = req.RawUID
	}
	if normalized, err := nfc.NormalizeUID(uid); err == nil {
		uid = normalized
	}

	if s.debounce != nil && !s.debounce.Accept(req.Reader, uid) {
		log.Debugf("🔁 [Reader: %s] Repeat read of %s dropped", req.Reader, uid)
		return Reply{}, false
	}

	status, err := s.scans.HandleScan(uid, req.Mode)
	if err != nil {
		log.Warnf("⚠️ [Reader: %s] Scan of %s failed: %v", req.Reader, uid, err)
		return Reply{Error: err.Error()}, true
	}
	return Reply{Status: &status}, true
}
