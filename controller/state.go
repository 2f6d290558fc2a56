package controller

// State is implemented by every connection-state the controller can
// occupy, per spec.md §4.6's state diagram. The marker method closes
// the set to this package's types; callers type-switch on the
// concrete value to render UI.
type State interface {
	isState()
	String() string
}

// Disconnected is the initial state and the state auto-reconnect
// lands on once its attempt cap is exhausted or the user calls
// Disconnect.
type Disconnected struct{}

func (Disconnected) isState()       {}
func (Disconnected) String() string { return "Disconnected" }

// Connecting is entered for a user-initiated connect_with_pairing or a
// non-auto reconnect, while the handshake is in flight.
type Connecting struct{}

func (Connecting) isState()       {}
func (Connecting) String() string { return "Connecting" }

// Reconnecting is entered for an auto-reconnect attempt. Unlike
// Connecting it carries the device name, so the UI can show a
// "Disconnect" affordance naming which device it's trying to reach.
type Reconnecting struct {
	Name string
}

func (Reconnecting) isState() {}
func (r Reconnecting) String() string {
	return "Reconnecting(" + r.Name + ")"
}

// Connected is entered once a handshake and DEVICE_INFO exchange
// complete and the session's three tasks are running.
type Connected struct {
	Name string
}

func (Connected) isState() {}
func (c Connected) String() string {
	return "Connected(" + c.Name + ")"
}

// Error is entered when a connect or reconnect attempt fails outright
// (not a mid-session loss, which instead drives auto-reconnect or a
// direct transition to Disconnected).
type Error struct {
	Message string
}

func (Error) isState() {}
func (e Error) String() string {
	return "Error(" + e.Message + ")"
}
