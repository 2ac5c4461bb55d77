package relay

import (
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/mevdschee/qsbulk/packet"
)

// Target receives decoded pass-through packets
type Target interface {
	AddServerPacket(p *packet.ServerPacket) error
}

// Relay accepts TCP connections from server processes and buffers the
// pass-through statements they send
type Relay struct {
	listen   string
	target   Target
	logger   *zap.Logger
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// New creates a new relay instance
func New(listen string, target Target, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		listen: listen,
		target: target,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start begins accepting connections
func (r *Relay) Start() error {
	listener, err := net.Listen("tcp", r.listen)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()
	r.logger.Info("Relay listening", zap.String("address", listener.Addr().String()))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				r.logger.Warn("Accept error", zap.Error(err))
				continue
			}
			if !r.track(conn) {
				conn.Close()
				return
			}
			r.wg.Add(1)
			go r.handleConnection(conn)
		}
	}()

	return nil
}

// Addr returns the listening address, or nil before Start
func (r *Relay) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Close stops accepting, closes open connections and waits for handlers
func (r *Relay) Close() error {
	r.mu.Lock()
	r.closed = true
	var err error
	if r.listener != nil {
		err = r.listener.Close()
	}
	for conn := range r.conns {
		conn.Close()
	}
	r.mu.Unlock()

	r.wg.Wait()
	return err
}

// track registers an accepted connection; it fails once Close has been called
func (r *Relay) track(conn net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.conns[conn] = struct{}{}
	return true
}

func (r *Relay) untrack(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
}

func (r *Relay) handleConnection(conn net.Conn) {
	defer r.wg.Done()
	defer r.untrack(conn)
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	for {
		p, err := ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				r.logger.Warn("Dropping relay connection", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		if p.Opcode != OpRawStatement {
			r.logger.Debug("Ignoring unknown opcode",
				zap.String("remote", remote),
				zap.Uint16("opcode", p.Opcode))
			continue
		}
		if err := r.target.AddServerPacket(p); err != nil {
			r.logger.Warn("Malformed pass-through packet",
				zap.String("remote", remote),
				zap.Error(err))
		}
	}
}
