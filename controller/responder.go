package controller

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/universal-clipboard/uclip/events"
	uclipnoise "github.com/universal-clipboard/uclip/noise"
	"github.com/universal-clipboard/uclip/pairing"
	"github.com/universal-clipboard/uclip/store"
	"github.com/universal-clipboard/uclip/transport"
)

// Listener is a running responder: it owns the TCP listener and the
// pairing code generated for this listening session.
type Listener struct {
	listener    net.Listener
	pairingCode string
	psk         []byte
	controller  *Controller
	stopped     chan struct{}
}

// Listen opens a TCP listener on port, generates a fresh pairing code,
// emits ServerStarted, and launches the accept loop in a background
// goroutine. The returned Listener's Stop method closes the listener;
// PairingCode reports the code to display for the user to type into
// the initiator.
func (c *Controller) Listen(port int) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("controller: listen: %w", err)
	}

	code, err := pairing.GeneratePairingCode()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("controller: generate pairing code: %w", err)
	}
	psk, err := pairing.DeriveSessionKey(code)
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("controller: derive session key: %w", err)
	}

	l := &Listener{
		listener:    ln,
		pairingCode: code,
		psk:         psk,
		controller:  c,
		stopped:     make(chan struct{}),
	}

	events.Emit(c.sink, events.ServerStarted{PairingCode: code, Port: port})
	go l.acceptLoop()
	return l, nil
}

// PairingCode returns the code generated for this listening session.
func (l *Listener) PairingCode() string {
	return l.pairingCode
}

// Stop closes the listener, ending the accept loop.
func (l *Listener) Stop() error {
	close(l.stopped)
	return l.listener.Close()
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.stopped:
				return
			default:
				logrus.WithError(err).Warn("controller: accept failed")
				return
			}
		}
		go l.handleConn(conn)
	}
}

// handshakeIdleTimeout bounds how long an accepted-but-unhandshaken
// connection may sit before the responder gives up on it, so a slow or
// silent initiator cannot hold the single-connection responder slot
// forever.
const handshakeIdleTimeout = 30 * time.Second

// handleConn reads the handshake selector first (spec.md §4.2/§6),
// then dispatches to the pairing or reconnect handshake. It rejects a
// second connection outright while one is already Connected, since
// this controller models a single active paired link.
func (l *Listener) handleConn(conn net.Conn) {
	if _, ok := l.controller.State().(Connected); ok {
		conn.Close()
		return
	}

	conn.SetDeadline(time.Now().Add(handshakeIdleTimeout))

	selector, peerPub, err := transport.ReadHandshakeSelector(conn)
	if err != nil {
		conn.Close()
		return
	}

	switch selector {
	case transport.SelectorPairing:
		l.acceptPairing(conn)
	case transport.SelectorReconnect:
		l.acceptReconnect(conn, peerPub)
	default:
		conn.Close()
	}
}

func (l *Listener) acceptPairing(conn net.Conn) {
	c := l.controller
	c.setState(Connecting{})

	tr, remotePub, err := transport.PerformPairingHandshake(conn, c.identity.Private[:], l.psk, uclipnoise.Responder)
	if err != nil {
		conn.Close()
		events.Emit(c.sink, events.HandshakeFailed{Reason: err.Error()})
		c.fail(fmt.Sprintf("pairing failed: %v", err))
		return
	}
	conn.SetDeadline(time.Time{})

	if remoteAddr := conn.RemoteAddr(); remoteAddr != nil {
		host, port := splitHostPort(remoteAddr.String())
		if err := c.store.SavePairedDevice(store.PairedDevice{
			Name:      host,
			PublicKey: remotePub,
			Host:      host,
			Port:      port,
		}); err != nil {
			logrus.WithError(err).Warn("controller: failed to persist paired-device record")
		}
	}

	if err := c.finishConnect(tr, "", 0, remotePub, "", false); err != nil {
		logrus.WithError(err).Warn("controller: post-handshake setup failed")
	}
}

func (l *Listener) acceptReconnect(conn net.Conn, peerPub []byte) {
	c := l.controller

	devices, err := c.store.LoadPairedDevices()
	if err != nil {
		conn.Close()
		c.fail(fmt.Sprintf("failed to load paired devices: %v", err))
		return
	}

	var matched *store.PairedDevice
	for i := range devices {
		if transport.ConstantTimeEqual(devices[i].PublicKey, peerPub) {
			matched = &devices[i]
			break
		}
	}
	if matched == nil {
		conn.Close()
		events.Emit(c.sink, events.HandshakeFailed{Reason: "unknown peer public key"})
		return
	}

	c.setState(Connecting{})
	tr, err := transport.PerformReconnectHandshake(conn, c.identity.Private[:], peerPub, uclipnoise.Responder)
	if err != nil {
		conn.Close()
		events.Emit(c.sink, events.HandshakeFailed{Reason: err.Error()})
		c.fail(fmt.Sprintf("reconnect failed: %v", err))
		return
	}
	conn.SetDeadline(time.Time{})

	if err := c.finishConnect(tr, matched.Host, matched.Port, peerPub, matched.Name, false); err != nil {
		logrus.WithError(err).Warn("controller: post-handshake setup failed")
	}
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}
