package cryptosim

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stealthrocket/cryptosim/internal/buffer"
	"github.com/stealthrocket/cryptosim/internal/tracelog"
)

// Server accepts client connections and serves their calls through a shared
// Handler. All clients see the same keys and the same operation tables; when
// the last client disconnects every outstanding operation is discarded.
type Server struct {
	// Handler executes the calls. Nil means a handler with default limits.
	Handler *Handler

	// MaxFrameSize bounds a single message in either direction. Zero means
	// DefaultMaxFrameSize.
	MaxFrameSize int

	// Log receives connection-level events. Nil disables logging.
	Log *zap.Logger

	// Trace, when set, records every exchange.
	Trace *tracelog.Writer

	mutex   sync.Mutex
	clients int
	pool    buffer.Pool
}

// Serve accepts connections from l until ctx is canceled, then closes the
// listener and waits for in-flight connections to drain.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	handler := s.Handler
	if handler == nil {
		handler = NewHandler(nil)
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxFrameSize := s.MaxFrameSize
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-ctx.Done()
		l.Close()
		return nil
	})

	log.Info("serving", zap.String("address", l.Addr().String()))
	for {
		conn, err := l.Accept()
		if err != nil {
			waitErr := group.Wait()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if waitErr != nil {
				return waitErr
			}
			return err
		}
		session := log.With(zap.String("session", uuid.NewString()))
		s.connect(session)
		group.Go(func() error {
			defer conn.Close()
			defer s.disconnect(handler, session)
			s.serveConn(ctx, handler, session, conn, maxFrameSize)
			return nil
		})
	}
}

func (s *Server) connect(log *zap.Logger) {
	s.mutex.Lock()
	s.clients++
	n := s.clients
	s.mutex.Unlock()
	log.Info("client connected", zap.Int("clients", n))
}

// disconnect drops the client count and, when it reaches zero, resets the
// operation tables under the same lock so a client connecting concurrently
// cannot lose fresh operations.
func (s *Server) disconnect(handler *Handler, log *zap.Logger) {
	s.mutex.Lock()
	s.clients--
	n := s.clients
	if n == 0 {
		handler.Reset()
	}
	s.mutex.Unlock()
	log.Info("client disconnected", zap.Int("clients", n))
	if n == 0 {
		log.Info("operation tables reset")
	}
}

func (s *Server) serveConn(ctx context.Context, handler *Handler, log *zap.Logger, conn net.Conn, maxFrameSize int) {
	rsp := s.pool.Get(maxFrameSize)
	defer s.pool.Put(rsp)

	var req []byte
	for {
		b, err := readFrame(conn, req, maxFrameSize)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("receiving request", zap.Error(err))
			}
			return
		}
		req = b[:cap(b)]

		now := time.Now()
		reply, err := handler.Handle(ctx, b, rsp.Data)
		if err != nil {
			// The exchange cannot be completed; drop the client rather
			// than leave it desynchronized.
			log.Error("dropping client", zap.Error(err))
			return
		}
		if s.Trace != nil {
			err := s.Trace.WriteRecord(&tracelog.Record{
				Time:    now,
				Request: b,
				Reply:   reply,
			})
			if err != nil {
				log.Warn("writing trace record", zap.Error(err))
			}
		}
		if err := writeFrame(conn, reply, maxFrameSize); err != nil {
			log.Warn("sending reply", zap.Error(err))
			return
		}
	}
}
