package server

import (
	"errors"
	"net"

	"github.com/rs/zerolog/log"
)

const defaultMaxBufferSize = 64 * 1024

// operations runs one decoded request buffer.
type operations interface {
	RunOperation(buf []byte) ([]byte, error)
}

// Handler answers one request per connection: read, run, respond.
type Handler struct {
	ops           operations
	maxBufferSize int
}

type HandlerConfig struct {
	Operations    operations
	MaxBufferSize int
}

func (c *HandlerConfig) validate() error {
	var errGrp []error
	if c.Operations == nil {
		errGrp = append(errGrp, errors.New("operations are required"))
	}
	return errors.Join(errGrp...)
}

func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	size := cfg.MaxBufferSize
	if size <= 0 {
		size = defaultMaxBufferSize
	}
	return &Handler{
		ops:           cfg.Operations,
		maxBufferSize: size,
	}, nil
}

// Handle implements the server handler interface.
func (h *Handler) Handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close connection")
		}
	}()

	buf := make([]byte, h.maxBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read connection")
		return
	}

	response, err := h.ops.RunOperation(buf[:n])
	if err != nil {
		h.respond(conn, []byte("ERROR: "+err.Error()))
		return
	}
	h.respond(conn, response)
}

func (h *Handler) respond(conn net.Conn, payload []byte) {
	if _, err := conn.Write(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
