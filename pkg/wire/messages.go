package wire

// ProtocolVersion is the current wire protocol major version. Within
// version 1 the message set defined in this package is frozen; new
// variants require a higher version advertised by the server.
const ProtocolVersion uint32 = 1

// OS identifies the client's host operating system.
type OS uint8

const (
	OSUnknown OS = iota
	OSLinux
	OSWindows
	OSMacOS
)

// MonitorInfo describes one of the client's physical displays.
type MonitorInfo struct {
	MonitorID  uint32
	X          int32
	Y          int32
	Width      uint32
	Height     uint32
	RefreshHz  uint32
}

// WindowMode is the initial presentation mode for a server window.
type WindowMode uint8

const (
	WindowModeWindowed WindowMode = iota
	WindowModeFullscreen
	WindowModeBorderless
	WindowModeWindowedMaximized
)

// FrameAnchor controls where a window is initially positioned.
type FrameAnchor uint8

const (
	FrameAnchorTopLeft FrameAnchor = iota
	FrameAnchorCenter
)

// WindowSettings is advertised by the server for each logical window it
// intends to drive.
type WindowSettings struct {
	WindowID      uint32
	HasMonitorID  bool
	MonitorID     uint32
	Title         string
	InitialMode   WindowMode
	Width         uint32
	Height        uint32
	AlwaysOnTop   bool
	AllowResize   bool
	ResizeFrame   bool
	FrameAnchor   FrameAnchor
}

// PixelFormat is the raw pixel layout used by Frame segment data.
type PixelFormat uint8

const (
	PixelFormatRGB PixelFormat = iota
	PixelFormatRGBA
)

// BytesPerPixel returns the byte stride of one pixel in this format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA:
		return 4
	default:
		return 3
	}
}

// CompressionKind names the optional per-segment byte compressor.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionZstd
)

// Compression describes the negotiated compressor and its parameters.
type Compression struct {
	Kind  CompressionKind
	Level int32 // meaningful only when Kind == CompressionZstd
}

// AuthMethodKind selects the post-hello authentication exchange.
type AuthMethodKind uint8

const (
	AuthMethodNone AuthMethodKind = iota
	AuthMethodPassword
	AuthMethodSignature
)

// AuthMethod is carried in ServerHelloAck. SignMessage is exactly 32
// cryptographically random bytes when Kind == AuthMethodSignature.
type AuthMethod struct {
	Kind        AuthMethodKind
	SignMessage []byte
}

// AuthStatus is the outcome carried by ServerAuthAck.
type AuthStatus uint8

const (
	AuthStatusSuccess AuthStatus = iota
	AuthStatusFailure
)

// StatusKind classifies a StatusUpdate.
type StatusKind uint8

const (
	StatusExit StatusKind = iota
	StatusInfo
	StatusWarning
	StatusError
)

// ExitReason further qualifies a StatusExit update, primarily so peers
// can distinguish a version mismatch from a generic shutdown without
// string-matching Message.
type ExitReason uint32

const (
	ExitReasonGeneric ExitReason = iota
	ExitReasonUnsupportedVersion
	ExitReasonAuthFailed
	ExitReasonProtocolError
)

// StatusUpdate is shared verbatim between ClientMessage and ServerMessage.
type StatusUpdate struct {
	Kind       StatusKind
	Message    string
	ExitReason ExitReason // meaningful only when Kind == StatusExit
}

// AuthDataKind selects which credential shape ClientAuth carries.
type AuthDataKind uint8

const (
	AuthDataPassword AuthDataKind = iota
	AuthDataSignature
)

// AuthData is the credential payload of ClientAuth.
type AuthData struct {
	Kind AuthDataKind

	Password string // Kind == AuthDataPassword

	SignatureBytes []byte // Kind == AuthDataSignature
	PublicKeyPEM   string // Kind == AuthDataSignature, PKCS#1 PEM
}

// InputKind selects which event shape UserInput carries.
type InputKind uint8

const (
	InputKey InputKind = iota
	InputMouse
	InputWindow
)

// KeyEvent reports a single keyboard key transition.
type KeyEvent struct {
	KeyCode uint32
	Pressed bool
}

// MouseButtonKind identifies a mouse action shape.
type MouseButtonKind uint8

const (
	MouseMove MouseButtonKind = iota
	MouseButtonDown
	MouseButtonUp
	MouseWheel
)

// MouseEvent reports pointer motion, button transitions, or wheel deltas.
type MouseEvent struct {
	Action      MouseButtonKind
	X           int32
	Y           int32
	Button      uint8
	WheelDeltaX int32
	WheelDeltaY int32
}

// WindowActionKind identifies a window event shape.
type WindowActionKind uint8

const (
	WindowResize WindowActionKind = iota
	WindowMove
	WindowClose
	WindowFocus
)

// WindowEvent reports a client-side window transition.
type WindowEvent struct {
	Action WindowActionKind
	Width  uint32
	Height uint32
	X      int32
	Y      int32
}

// UserInput carries one input event addressed to a server window.
type UserInput struct {
	WindowID uint32
	Kind     InputKind

	Key    KeyEvent    // Kind == InputKey
	Mouse  MouseEvent  // Kind == InputMouse
	Window WindowEvent // Kind == InputWindow
}

// Segment is a rectangular region of a Frame update.
type Segment struct {
	X      int32
	Y      int32
	Width  uint32
	Height uint32
	Data   []byte
}

// Frame is a full or partial pixel-buffer update for one logical window.
type Frame struct {
	WindowID uint32
	Width    uint32
	Height   uint32
	Segments []Segment
}

// ClientHello is the first message a client sends after the TLS handshake.
type ClientHello struct {
	ProtocolVersion uint32
	OS              OS
	OSVersion       string
	Monitors        []MonitorInfo
}

// ClientAuth answers the server's advertised auth method.
type ClientAuth struct {
	AuthData AuthData
}

// ClientMessageKind discriminates the ClientMessage union.
type ClientMessageKind uint8

const (
	ClientMsgHello ClientMessageKind = iota
	ClientMsgAuth
	ClientMsgStatusUpdate
	ClientMsgUserInput
)

// ClientMessage is the closed union of all client-originated messages.
// Exactly one of the payload fields is meaningful, selected by Kind.
type ClientMessage struct {
	Kind ClientMessageKind

	Hello        ClientHello
	Auth         ClientAuth
	StatusUpdate StatusUpdate
	UserInput    UserInput
}

// NewClientHello constructs a ClientMessage carrying a ClientHello.
func NewClientHello(h ClientHello) ClientMessage {
	return ClientMessage{Kind: ClientMsgHello, Hello: h}
}

// NewClientAuth constructs a ClientMessage carrying a ClientAuth.
func NewClientAuth(a ClientAuth) ClientMessage {
	return ClientMessage{Kind: ClientMsgAuth, Auth: a}
}

// NewClientStatusUpdate constructs a ClientMessage carrying a StatusUpdate.
func NewClientStatusUpdate(s StatusUpdate) ClientMessage {
	return ClientMessage{Kind: ClientMsgStatusUpdate, StatusUpdate: s}
}

// NewClientUserInput constructs a ClientMessage carrying a UserInput.
func NewClientUserInput(u UserInput) ClientMessage {
	return ClientMessage{Kind: ClientMsgUserInput, UserInput: u}
}

// ServerHelloAck is the server's reply to ClientHello.
type ServerHelloAck struct {
	Format      PixelFormat
	Compression Compression
	Windows     []WindowSettings
	AuthMethod  AuthMethod
}

// ServerAuthAck is the server's reply to ClientAuth.
type ServerAuthAck struct {
	Status  AuthStatus
	Message string
}

// ServerMessageKind discriminates the ServerMessage union.
type ServerMessageKind uint8

const (
	ServerMsgHelloAck ServerMessageKind = iota
	ServerMsgAuthAck
	ServerMsgStatusUpdate
	ServerMsgFrame
)

// ServerMessage is the closed union of all server-originated messages.
type ServerMessage struct {
	Kind ServerMessageKind

	HelloAck     ServerHelloAck
	AuthAck      ServerAuthAck
	StatusUpdate StatusUpdate
	Frame        Frame
}

// NewServerHelloAck constructs a ServerMessage carrying a ServerHelloAck.
func NewServerHelloAck(a ServerHelloAck) ServerMessage {
	return ServerMessage{Kind: ServerMsgHelloAck, HelloAck: a}
}

// NewServerAuthAck constructs a ServerMessage carrying a ServerAuthAck.
func NewServerAuthAck(a ServerAuthAck) ServerMessage {
	return ServerMessage{Kind: ServerMsgAuthAck, AuthAck: a}
}

// NewServerStatusUpdate constructs a ServerMessage carrying a StatusUpdate.
func NewServerStatusUpdate(s StatusUpdate) ServerMessage {
	return ServerMessage{Kind: ServerMsgStatusUpdate, StatusUpdate: s}
}

// NewServerFrame constructs a ServerMessage carrying a Frame.
func NewServerFrame(f Frame) ServerMessage {
	return ServerMessage{Kind: ServerMsgFrame, Frame: f}
}
