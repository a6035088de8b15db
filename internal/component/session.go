package component

// Sender is the outbound half of a client connection. Send buffers an encoded
// message; the connection flushes it at the end of the tick.
type Sender interface {
	Send(data []byte)
}

// InGameStream links an ECS entity to its network session.
// This is a reference, not the session itself; the session lives in net/.
type InGameStream struct {
	SessionID uint64
	Out       Sender
}
