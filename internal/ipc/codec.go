package ipc

import (
	"encoding/binary"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// maxFrameBytes bounds a single frame's payload, matching the original's
// 100MB sanity check (protocol.rs), checked before any allocation so a
// corrupt or hostile length prefix can't trigger an unbounded make().
const maxFrameBytes = 100 * 1024 * 1024

// envelope is the tagged-union stand-in: msgpack has no native sum type,
// so every frame carries an explicit Kind discriminator alongside its
// raw payload (SPEC_FULL.md §2.7).
type envelope struct {
	Kind    Kind
	Payload msgpack.RawMessage
}

// WriteMessage encodes kind+payload into a length-prefixed frame and
// writes it to w, flushing is implicit since io.Writer has no buffering
// here - the worker's stdin/stdout pipes are unbuffered at this layer.
func WriteMessage(w io.Writer, kind Kind, payload any) error {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.Serialization, Message: "encoding IPC payload", Cause: err}
	}
	body, err := msgpack.Marshal(envelope{Kind: kind, Payload: raw})
	if err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.Serialization, Message: "encoding IPC envelope", Cause: err}
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "writing IPC message length", Cause: err}
	}
	if _, err := w.Write(body); err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "writing IPC message body", Cause: err}
	}
	return nil
}

// ReadMessage reads one frame from r and returns its kind plus the raw
// payload bytes for the caller to unmarshal into the type matching that
// kind. Deserialization of the payload itself is intentionally
// unchecked beyond msgpack's own decode-time type errors - IPC peers are
// trusted, per the spec's documented tradeoff (SPEC_FULL.md §5).
func ReadMessage(r io.Reader) (Kind, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "reading IPC message length", Cause: err}
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > maxFrameBytes {
		return 0, nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "IPC message too large"}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, &tfdiags.Diagnostic{Kind: tfdiags.IPC, Message: "reading IPC message body", Cause: err}
	}

	var env envelope
	if err := msgpack.Unmarshal(body, &env); err != nil {
		return 0, nil, &tfdiags.Diagnostic{Kind: tfdiags.Deserialization, Message: "decoding IPC envelope", Cause: err}
	}
	return env.Kind, env.Payload, nil
}

// DecodePayload unmarshals a frame's raw payload into v.
func DecodePayload(payload []byte, v any) error {
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return &tfdiags.Diagnostic{Kind: tfdiags.Deserialization, Message: "decoding IPC payload", Cause: err}
	}
	return nil
}
