package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"sigillo/card"

	"github.com/sirupsen/logrus"
)

// LineServer speaks the legacy newline-delimited protocol some point-of-sale
// integrations still use: one uppercase verb per line in, one JSON object
// per line out. It shares the card actor with the WebSocket surface, so the
// single-goroutine hardware discipline holds across both.
type LineServer struct {
	actor    *CardActor
	listener net.Listener
}

func NewLineServer(actor *CardActor, addr string) (*LineServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	return &LineServer{actor: actor, listener: listener}, nil
}

func (s *LineServer) Addr() string {
	return s.listener.Addr().String()
}

// Run accepts connections until ctx is done.
func (s *LineServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logrus.WithError(err).Warn("Line protocol accept failed")
			continue
		}
		go s.serve(conn)
	}
}

type lineReply struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *LineServer) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "EXIT" {
			s.reply(writer, lineReply{Success: true, Data: "BYE"})
			return
		}
		s.reply(writer, s.dispatch(line))
	}
}

func (s *LineServer) dispatch(line string) lineReply {
	verb, arg, _ := strings.Cut(line, ":")

	switch verb {
	case "PING":
		return lineReply{Success: true, Data: "PONG"}

	case "CHECK_READER":
		readers, err := card.ListReaders()
		if err != nil {
			return lineReply{Success: false, Error: card.Message(err)}
		}
		return lineReply{Success: true, Data: readers}

	case "READ_CARD":
		serial, err := s.actor.Serial()
		if err != nil {
			return lineReply{Success: false, Error: card.Message(err)}
		}
		return lineReply{Success: true, Data: map[string]string{"serial": serial}}

	case "COMPUTE_SIGILLO":
		var data TicketData
		if err := json.Unmarshal([]byte(arg), &data); err != nil {
			return lineReply{Success: false, Error: "malformed ticket data"}
		}
		seal, err := s.actor.ComputeSigillo(data)
		if err != nil {
			return lineReply{Success: false, Error: card.Message(err)}
		}
		return lineReply{Success: true, Data: seal}

	case "DEBUG":
		return lineReply{Success: true, Data: s.actor.Status()}

	default:
		return lineReply{Success: false, Error: fmt.Sprintf("unknown verb %q", verb)}
	}
}

func (s *LineServer) reply(w *bufio.Writer, r lineReply) {
	payload, err := json.Marshal(r)
	if err != nil {
		logrus.WithError(err).Error("Could not encode line protocol reply")
		return
	}
	w.Write(payload)
	w.WriteByte('\n')
	w.Flush()
}
