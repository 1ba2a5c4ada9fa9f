package protocol

import (
	"bytes"
)

// RunOperation decodes one request buffer and dispatches it.
func (m *Manager) RunOperation(buf []byte) ([]byte, error) {
	msgType, queryBytes, decodeErr := Decode(buf)
	if decodeErr != nil {
		return nil, decodeErr
	}

	if len(bytes.TrimSpace(queryBytes)) == 0 {
		return nil, newError(ErrEmptyQuery, "%s requires parameters", verbName(msgType))
	}

	switch msgType {
	case Read:
		return m.Read(queryBytes)
	case Write:
		return m.Write(queryBytes)
	case Delete:
		if err := m.Delete(queryBytes); err != nil {
			return nil, err
		}
		return []byte("OK"), nil
	}

	return nil, ErrUnknown
}

func verbName(msgType int) string {
	switch msgType {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case Delete:
		return "DELETE"
	}
	return "UNKNOWN"
}
