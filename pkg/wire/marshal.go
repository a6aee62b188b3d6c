package wire

// Wire kind bytes. Client discriminants occupy 0x01-0x04, server
// discriminants occupy 0x81-0x84, so a stray message read against the
// wrong direction fails fast instead of silently misinterpreting a
// payload that happens to decode.
const (
	kindClientHello        = 0x01
	kindClientAuth         = 0x02
	kindClientStatusUpdate = 0x03
	kindClientUserInput    = 0x04

	kindServerHelloAck     = 0x81
	kindServerAuthAck      = 0x82
	kindServerStatusUpdate = 0x83
	kindServerFrame        = 0x84
)

// MarshalBinary encodes m as a self-contained payload suitable for
// Codec.WriteMessage.
func (m ClientMessage) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	switch m.Kind {
	case ClientMsgHello:
		e.byte(kindClientHello)
		putClientHello(e, m.Hello)
	case ClientMsgAuth:
		e.byte(kindClientAuth)
		putAuthData(e, m.Auth.AuthData)
	case ClientMsgStatusUpdate:
		e.byte(kindClientStatusUpdate)
		putStatusUpdate(e, m.StatusUpdate)
	case ClientMsgUserInput:
		e.byte(kindClientUserInput)
		putUserInput(e, m.UserInput)
	default:
		return nil, ErrUnknownVariant
	}
	return e.bytesOut(), nil
}

// UnmarshalClientMessage decodes a payload produced by
// ClientMessage.MarshalBinary.
func UnmarshalClientMessage(payload []byte) (ClientMessage, error) {
	d := newDecoder(payload)
	kind, err := d.byte()
	if err != nil {
		return ClientMessage{}, err
	}
	switch kind {
	case kindClientHello:
		h, err := getClientHello(d)
		if err != nil {
			return ClientMessage{}, err
		}
		return NewClientHello(h), nil
	case kindClientAuth:
		a, err := getAuthData(d)
		if err != nil {
			return ClientMessage{}, err
		}
		return NewClientAuth(ClientAuth{AuthData: a}), nil
	case kindClientStatusUpdate:
		s, err := getStatusUpdate(d)
		if err != nil {
			return ClientMessage{}, err
		}
		return NewClientStatusUpdate(s), nil
	case kindClientUserInput:
		u, err := getUserInput(d)
		if err != nil {
			return ClientMessage{}, err
		}
		return NewClientUserInput(u), nil
	default:
		return ClientMessage{}, ErrUnknownVariant
	}
}

// MarshalBinary encodes m as a self-contained payload suitable for
// Codec.WriteMessage.
func (m ServerMessage) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	switch m.Kind {
	case ServerMsgHelloAck:
		e.byte(kindServerHelloAck)
		putServerHelloAck(e, m.HelloAck)
	case ServerMsgAuthAck:
		e.byte(kindServerAuthAck)
		putServerAuthAck(e, m.AuthAck)
	case ServerMsgStatusUpdate:
		e.byte(kindServerStatusUpdate)
		putStatusUpdate(e, m.StatusUpdate)
	case ServerMsgFrame:
		e.byte(kindServerFrame)
		putFrame(e, m.Frame)
	default:
		return nil, ErrUnknownVariant
	}
	return e.bytesOut(), nil
}

// UnmarshalServerMessage decodes a payload produced by
// ServerMessage.MarshalBinary.
func UnmarshalServerMessage(payload []byte) (ServerMessage, error) {
	d := newDecoder(payload)
	kind, err := d.byte()
	if err != nil {
		return ServerMessage{}, err
	}
	switch kind {
	case kindServerHelloAck:
		a, err := getServerHelloAck(d)
		if err != nil {
			return ServerMessage{}, err
		}
		return NewServerHelloAck(a), nil
	case kindServerAuthAck:
		a, err := getServerAuthAck(d)
		if err != nil {
			return ServerMessage{}, err
		}
		return NewServerAuthAck(a), nil
	case kindServerStatusUpdate:
		s, err := getStatusUpdate(d)
		if err != nil {
			return ServerMessage{}, err
		}
		return NewServerStatusUpdate(s), nil
	case kindServerFrame:
		f, err := getFrame(d)
		if err != nil {
			return ServerMessage{}, err
		}
		return NewServerFrame(f), nil
	default:
		return ServerMessage{}, ErrUnknownVariant
	}
}

func putClientHello(e *encoder, h ClientHello) {
	e.u32(h.ProtocolVersion)
	e.byte(uint8(h.OS))
	e.string(h.OSVersion)
	e.u32(uint32(len(h.Monitors)))
	for _, m := range h.Monitors {
		e.u32(m.MonitorID)
		e.i32(m.X)
		e.i32(m.Y)
		e.u32(m.Width)
		e.u32(m.Height)
		e.u32(m.RefreshHz)
	}
}

func getClientHello(d *decoder) (ClientHello, error) {
	var h ClientHello
	var err error
	if h.ProtocolVersion, err = d.u32(); err != nil {
		return h, err
	}
	osByte, err := d.byte()
	if err != nil {
		return h, err
	}
	h.OS = OS(osByte)
	if h.OSVersion, err = d.string(); err != nil {
		return h, err
	}
	n, err := d.count(24) // MonitorID+X+Y+Width+Height+RefreshHz, 6 uint32/int32 fields
	if err != nil {
		return h, err
	}
	h.Monitors = make([]MonitorInfo, 0, n)
	for i := uint32(0); i < n; i++ {
		var m MonitorInfo
		if m.MonitorID, err = d.u32(); err != nil {
			return h, err
		}
		if m.X, err = d.i32(); err != nil {
			return h, err
		}
		if m.Y, err = d.i32(); err != nil {
			return h, err
		}
		if m.Width, err = d.u32(); err != nil {
			return h, err
		}
		if m.Height, err = d.u32(); err != nil {
			return h, err
		}
		if m.RefreshHz, err = d.u32(); err != nil {
			return h, err
		}
		h.Monitors = append(h.Monitors, m)
	}
	return h, nil
}

func putAuthData(e *encoder, a AuthData) {
	e.byte(uint8(a.Kind))
	switch a.Kind {
	case AuthDataPassword:
		e.string(a.Password)
	case AuthDataSignature:
		e.bytes(a.SignatureBytes)
		e.string(a.PublicKeyPEM)
	}
}

func getAuthData(d *decoder) (AuthData, error) {
	var a AuthData
	kind, err := d.byte()
	if err != nil {
		return a, err
	}
	a.Kind = AuthDataKind(kind)
	switch a.Kind {
	case AuthDataPassword:
		if a.Password, err = d.string(); err != nil {
			return a, err
		}
	case AuthDataSignature:
		if a.SignatureBytes, err = d.bytes(); err != nil {
			return a, err
		}
		if a.PublicKeyPEM, err = d.string(); err != nil {
			return a, err
		}
	default:
		return a, ErrUnknownVariant
	}
	return a, nil
}

func putStatusUpdate(e *encoder, s StatusUpdate) {
	e.byte(uint8(s.Kind))
	e.string(s.Message)
	e.u32(uint32(s.ExitReason))
}

func getStatusUpdate(d *decoder) (StatusUpdate, error) {
	var s StatusUpdate
	kind, err := d.byte()
	if err != nil {
		return s, err
	}
	s.Kind = StatusKind(kind)
	if s.Message, err = d.string(); err != nil {
		return s, err
	}
	reason, err := d.u32()
	if err != nil {
		return s, err
	}
	s.ExitReason = ExitReason(reason)
	return s, nil
}

func putUserInput(e *encoder, u UserInput) {
	e.u32(u.WindowID)
	e.byte(uint8(u.Kind))
	switch u.Kind {
	case InputKey:
		e.u32(u.Key.KeyCode)
		e.bool(u.Key.Pressed)
	case InputMouse:
		e.byte(uint8(u.Mouse.Action))
		e.i32(u.Mouse.X)
		e.i32(u.Mouse.Y)
		e.byte(u.Mouse.Button)
		e.i32(u.Mouse.WheelDeltaX)
		e.i32(u.Mouse.WheelDeltaY)
	case InputWindow:
		e.byte(uint8(u.Window.Action))
		e.u32(u.Window.Width)
		e.u32(u.Window.Height)
		e.i32(u.Window.X)
		e.i32(u.Window.Y)
	}
}

func getUserInput(d *decoder) (UserInput, error) {
	var u UserInput
	var err error
	if u.WindowID, err = d.u32(); err != nil {
		return u, err
	}
	kind, err := d.byte()
	if err != nil {
		return u, err
	}
	u.Kind = InputKind(kind)
	switch u.Kind {
	case InputKey:
		if u.Key.KeyCode, err = d.u32(); err != nil {
			return u, err
		}
		if u.Key.Pressed, err = d.boolean(); err != nil {
			return u, err
		}
	case InputMouse:
		action, err := d.byte()
		if err != nil {
			return u, err
		}
		u.Mouse.Action = MouseButtonKind(action)
		if u.Mouse.X, err = d.i32(); err != nil {
			return u, err
		}
		if u.Mouse.Y, err = d.i32(); err != nil {
			return u, err
		}
		if u.Mouse.Button, err = d.byte(); err != nil {
			return u, err
		}
		if u.Mouse.WheelDeltaX, err = d.i32(); err != nil {
			return u, err
		}
		if u.Mouse.WheelDeltaY, err = d.i32(); err != nil {
			return u, err
		}
	case InputWindow:
		action, err := d.byte()
		if err != nil {
			return u, err
		}
		u.Window.Action = WindowActionKind(action)
		if u.Window.Width, err = d.u32(); err != nil {
			return u, err
		}
		if u.Window.Height, err = d.u32(); err != nil {
			return u, err
		}
		if u.Window.X, err = d.i32(); err != nil {
			return u, err
		}
		if u.Window.Y, err = d.i32(); err != nil {
			return u, err
		}
	default:
		return u, ErrUnknownVariant
	}
	return u, nil
}

func putWindowSettings(e *encoder, w WindowSettings) {
	e.u32(w.WindowID)
	e.bool(w.HasMonitorID)
	e.u32(w.MonitorID)
	e.string(w.Title)
	e.byte(uint8(w.InitialMode))
	e.u32(w.Width)
	e.u32(w.Height)
	e.bool(w.AlwaysOnTop)
	e.bool(w.AllowResize)
	e.bool(w.ResizeFrame)
	e.byte(uint8(w.FrameAnchor))
}

func getWindowSettings(d *decoder) (WindowSettings, error) {
	var w WindowSettings
	var err error
	if w.WindowID, err = d.u32(); err != nil {
		return w, err
	}
	if w.HasMonitorID, err = d.boolean(); err != nil {
		return w, err
	}
	if w.MonitorID, err = d.u32(); err != nil {
		return w, err
	}
	if w.Title, err = d.string(); err != nil {
		return w, err
	}
	mode, err := d.byte()
	if err != nil {
		return w, err
	}
	w.InitialMode = WindowMode(mode)
	if w.Width, err = d.u32(); err != nil {
		return w, err
	}
	if w.Height, err = d.u32(); err != nil {
		return w, err
	}
	if w.AlwaysOnTop, err = d.boolean(); err != nil {
		return w, err
	}
	if w.AllowResize, err = d.boolean(); err != nil {
		return w, err
	}
	if w.ResizeFrame, err = d.boolean(); err != nil {
		return w, err
	}
	anchor, err := d.byte()
	if err != nil {
		return w, err
	}
	w.FrameAnchor = FrameAnchor(anchor)
	return w, nil
}

func putServerHelloAck(e *encoder, a ServerHelloAck) {
	e.byte(uint8(a.Format))
	e.byte(uint8(a.Compression.Kind))
	e.i32(a.Compression.Level)
	e.u32(uint32(len(a.Windows)))
	for _, w := range a.Windows {
		putWindowSettings(e, w)
	}
	e.byte(uint8(a.AuthMethod.Kind))
	e.bytes(a.AuthMethod.SignMessage)
}

func getServerHelloAck(d *decoder) (ServerHelloAck, error) {
	var a ServerHelloAck
	format, err := d.byte()
	if err != nil {
		return a, err
	}
	a.Format = PixelFormat(format)
	compKind, err := d.byte()
	if err != nil {
		return a, err
	}
	a.Compression.Kind = CompressionKind(compKind)
	if a.Compression.Level, err = d.i32(); err != nil {
		return a, err
	}
	n, err := d.count(26) // WindowID+HasMonitorID+MonitorID+empty Title+InitialMode+Width+Height+3 bools+FrameAnchor
	if err != nil {
		return a, err
	}
	a.Windows = make([]WindowSettings, 0, n)
	for i := uint32(0); i < n; i++ {
		w, err := getWindowSettings(d)
		if err != nil {
			return a, err
		}
		a.Windows = append(a.Windows, w)
	}
	authKind, err := d.byte()
	if err != nil {
		return a, err
	}
	a.AuthMethod.Kind = AuthMethodKind(authKind)
	if a.AuthMethod.SignMessage, err = d.bytes(); err != nil {
		return a, err
	}
	return a, nil
}

func putServerAuthAck(e *encoder, a ServerAuthAck) {
	e.byte(uint8(a.Status))
	e.string(a.Message)
}

func getServerAuthAck(d *decoder) (ServerAuthAck, error) {
	var a ServerAuthAck
	status, err := d.byte()
	if err != nil {
		return a, err
	}
	a.Status = AuthStatus(status)
	if a.Message, err = d.string(); err != nil {
		return a, err
	}
	return a, nil
}

func putFrame(e *encoder, f Frame) {
	e.u32(f.WindowID)
	e.u32(f.Width)
	e.u32(f.Height)
	e.u32(uint32(len(f.Segments)))
	for _, s := range f.Segments {
		e.i32(s.X)
		e.i32(s.Y)
		e.u32(s.Width)
		e.u32(s.Height)
		e.bytes(s.Data)
	}
}

func getFrame(d *decoder) (Frame, error) {
	var f Frame
	var err error
	if f.WindowID, err = d.u32(); err != nil {
		return f, err
	}
	if f.Width, err = d.u32(); err != nil {
		return f, err
	}
	if f.Height, err = d.u32(); err != nil {
		return f, err
	}
	n, err := d.count(20) // X+Y+Width+Height+empty Data length prefix, 5 uint32/int32 fields
	if err != nil {
		return f, err
	}
	f.Segments = make([]Segment, 0, n)
	for i := uint32(0); i < n; i++ {
		var s Segment
		if s.X, err = d.i32(); err != nil {
			return f, err
		}
		if s.Y, err = d.i32(); err != nil {
			return f, err
		}
		if s.Width, err = d.u32(); err != nil {
			return f, err
		}
		if s.Height, err = d.u32(); err != nil {
			return f, err
		}
		if s.Data, err = d.bytes(); err != nil {
			return f, err
		}
		f.Segments = append(f.Segments, s)
	}
	return f, nil
}
