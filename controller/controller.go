package controller

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/universal-clipboard/uclip/clipboard"
	"github.com/universal-clipboard/uclip/config"
	"github.com/universal-clipboard/uclip/crypto"
	"github.com/universal-clipboard/uclip/events"
	uclipnoise "github.com/universal-clipboard/uclip/noise"
	"github.com/universal-clipboard/uclip/pairing"
	"github.com/universal-clipboard/uclip/session"
	"github.com/universal-clipboard/uclip/store"
	"github.com/universal-clipboard/uclip/timeutil"
	"github.com/universal-clipboard/uclip/transport"
)

// Controller owns the connection state machine described in spec.md
// §4.6: it drives pairing/reconnect handshakes, exposes the
// send_text/send_image/disconnect operations, and schedules capped
// auto-reconnect on unexpected session loss. At most one session is
// active at a time.
type Controller struct {
	identity *crypto.KeyPair
	store    store.Collaborator
	clip     clipboard.Collaborator
	sink     events.Sink
	cfg      config.Config

	clock timeutil.Provider

	mu            sync.RWMutex
	state         State
	sess          *session.Session
	lastEndpoint  *endpoint
	autoReconnect bool
	reconnectGen  int // bumped by Disconnect to cancel any in-flight reconnect loop
}

type endpoint struct {
	host      string
	port      int
	name      string
	publicKey []byte
	// dialable is false for a session the local side accepted (it was
	// the responder): the listener, not this endpoint, is what lets
	// the peer come back, so auto-reconnect never dials out for it.
	dialable bool
}

// New creates a Controller in the Disconnected state. identity is this
// device's long-term Curve25519 keypair, typically loaded once via
// store.Collaborator.LoadIdentity (generating and persisting a fresh
// one on first run).
func New(identity *crypto.KeyPair, st store.Collaborator, clip clipboard.Collaborator, sink events.Sink, cfg config.Config) *Controller {
	return &Controller{
		identity:      identity,
		store:         st,
		clip:          clip,
		sink:          sink,
		cfg:           cfg,
		clock:         timeutil.Real{},
		state:         Disconnected{},
		autoReconnect: cfg.AutoReconnect,
	}
}

// WithClock overrides the controller's timeutil.Provider, used by tests
// to drive the auto-reconnect backoff loop deterministically. It must
// be called before any connection is established.
func (c *Controller) WithClock(clock timeutil.Provider) *Controller {
	c.clock = clock
	return c
}

// State returns the controller's current connection state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ConnectWithPairing opens a TCP connection to host:port, runs the
// XXpsk0 pairing handshake derived from code, persists the new
// paired-device record on success, exchanges DEVICE_INFO, and starts
// the session's three tasks.
func (c *Controller) ConnectWithPairing(host string, port int, code string) error {
	c.setState(Connecting{})

	psk, err := pairing.DeriveSessionKey(code)
	if err != nil {
		return c.fail(fmt.Sprintf("invalid pairing code: %v", err))
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprint(port)), 10*time.Second)
	if err != nil {
		return c.fail(fmt.Sprintf("dial failed: %v", err))
	}

	tr, remotePub, err := transport.PerformPairingHandshake(conn, c.identity.Private[:], psk, uclipnoise.Initiator)
	if err != nil {
		conn.Close()
		events.Emit(c.sink, events.HandshakeFailed{Reason: err.Error()})
		return c.fail(fmt.Sprintf("pairing failed: %v", err))
	}

	if err := c.store.SavePairedDevice(store.PairedDevice{
		Name:      host, // the record keeps the host as its name; DEVICE_INFO does not rename it
		PublicKey: remotePub,
		Host:      host,
		Port:      port,
	}); err != nil {
		logrus.WithError(err).Warn("controller: failed to persist paired-device record")
	}

	return c.finishConnect(tr, host, port, remotePub, "", true)
}

// Reconnect opens a TCP connection to host:port and runs the KK
// handshake for an already-paired device, identified by
// remotePublicKey. isAuto distinguishes an auto-reconnect attempt
// (state becomes Reconnecting) from a user-initiated one (Connecting).
func (c *Controller) Reconnect(host string, port int, deviceName string, remotePublicKey []byte, isAuto bool) error {
	if isAuto {
		c.setState(Reconnecting{Name: deviceName})
	} else {
		c.setState(Connecting{})
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprint(port)), 10*time.Second)
	if err != nil {
		return c.fail(fmt.Sprintf("dial failed: %v", err))
	}

	tr, err := transport.PerformReconnectHandshake(conn, c.identity.Private[:], remotePublicKey, uclipnoise.Initiator)
	if err != nil {
		conn.Close()
		events.Emit(c.sink, events.HandshakeFailed{Reason: err.Error()})
		return c.fail(fmt.Sprintf("reconnect failed: %v", err))
	}

	return c.finishConnect(tr, host, port, remotePublicKey, deviceName, true)
}

// finishConnect runs the post-handshake DEVICE_INFO exchange and
// starts the session, for both roles. dialable records whether this
// side can redial the endpoint itself (true for every call the local
// side initiated, whether initial pairing or a reconnect dial); it is
// false for a connection this side accepted, since a responder only
// regains connectivity by waiting for the peer to dial back in through
// its listener, never by dialing out itself.
func (c *Controller) finishConnect(tr *transport.EncryptedTransport, host string, port int, remotePub []byte, knownName string, dialable bool) error {
	remoteName, err := session.SendDeviceInfo(tr, c.cfg.DeviceName)
	if err != nil {
		tr.Close()
		return c.fail(fmt.Sprintf("device info exchange failed: %v", err))
	}
	if remoteName == "" {
		remoteName = knownName
	}

	sess := session.New(tr, c.clip, c.sink, fmt.Sprintf("%s:%d", host, port)).WithClock(c.clock)
	sess.Start(config.KeepaliveInterval)

	c.mu.Lock()
	c.sess = sess
	c.lastEndpoint = &endpoint{host: host, port: port, name: remoteName, publicKey: remotePub, dialable: dialable}
	c.autoReconnect = c.cfg.AutoReconnect
	c.reconnectGen++
	gen := c.reconnectGen
	c.mu.Unlock()

	c.setState(Connected{Name: remoteName})
	events.Emit(c.sink, events.DeviceConnected{Name: remoteName})

	go c.watchSession(sess, gen)
	return nil
}

func (c *Controller) fail(reason string) error {
	c.setState(Error{Message: reason})
	return fmt.Errorf("controller: %s", reason)
}

// watchSession blocks until sess terminates, then either schedules an
// auto-reconnect or transitions to Disconnected, depending on whether
// auto-reconnect is armed and gen still matches the controller's
// current reconnect generation (a Disconnect call bumps it, cancelling
// any reconnect loop that was about to start).
func (c *Controller) watchSession(sess *session.Session, gen int) {
	<-sess.Done()
	events.Emit(c.sink, events.DeviceDisconnected{})

	c.mu.RLock()
	armed := c.autoReconnect
	ep := c.lastEndpoint
	staleGen := gen != c.reconnectGen
	c.mu.RUnlock()

	if staleGen || !armed || ep == nil || !ep.dialable {
		c.setState(Disconnected{})
		return
	}

	c.runAutoReconnect(*ep, gen)
}

func (c *Controller) runAutoReconnect(ep endpoint, gen int) {
	for attempt := 1; attempt <= config.MaxReconnectAttempts; attempt++ {
		c.mu.RLock()
		cancelled := gen != c.reconnectGen
		c.mu.RUnlock()
		if cancelled {
			return
		}

		if err := c.Reconnect(ep.host, ep.port, ep.name, ep.publicKey, true); err == nil {
			return
		}

		c.mu.Lock()
		cancelled = gen != c.reconnectGen
		if !cancelled && attempt < config.MaxReconnectAttempts {
			// Another attempt follows the backoff, so the controller is
			// back in Reconnecting while it waits.
			c.state = Reconnecting{Name: ep.name}
		}
		c.mu.Unlock()
		if cancelled {
			return
		}

		if attempt < config.MaxReconnectAttempts {
			c.clock.Sleep(config.ReconnectDelay)
		}
	}

	c.mu.RLock()
	cancelled := gen != c.reconnectGen
	c.mu.RUnlock()
	if !cancelled {
		c.setState(Disconnected{})
	}
}

// SendText requires Connected and forwards to the active session's
// SendText with spec.md's fixed 5 s text-ACK timeout.
func (c *Controller) SendText(text string) error {
	sess, err := c.activeSession()
	if err != nil {
		return err
	}
	return sess.SendText(text, config.TextAckTimeout)
}

// SendImage requires Connected and forwards to the active session's
// SendImage, which itself enforces the 25 MiB cap and the size-scaled
// IMAGE_ACK timeout.
func (c *Controller) SendImage(png []byte, width, height int, onProgress func(sent, total int64)) error {
	sess, err := c.activeSession()
	if err != nil {
		return err
	}
	return sess.SendImage(png, width, height, onProgress)
}

func (c *Controller) activeSession() (*session.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.state.(Connected); !ok {
		return nil, fmt.Errorf("controller: not connected (state is %s)", c.state)
	}
	return c.sess, nil
}

// Disconnect is user-initiated: it disables auto-reconnect, cancels
// any in-flight reconnect loop, closes the active session (which in
// turn terminates its dispatcher, writer, and keepalive tasks), and
// transitions to Disconnected.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	c.autoReconnect = false
	c.reconnectGen++
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()

	if sess != nil {
		sess.Close()
	}

	c.setState(Disconnected{})
	return nil
}
