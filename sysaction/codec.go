package sysaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrInvalidSysAction is returned when data cannot be decoded as a SysAction.
	ErrInvalidSysAction = errors.New("invalid system action payload")

	// ErrInvalidAmount is returned when a payload amount is not a base-10
	// integer that fits in 256 bits.
	ErrInvalidAmount = errors.New("invalid system action amount")
)

// Decode parses a SysAction from raw bytes.
func Decode(data []byte) (*SysAction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidSysAction)
	}
	var sa SysAction
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	if sa.Action == "" {
		return nil, fmt.Errorf("%w: missing action field", ErrInvalidSysAction)
	}
	return &sa, nil
}

// DecodePayload unmarshals sa.Payload into dst.
func DecodePayload(sa *SysAction, dst interface{}) error {
	if len(sa.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(sa.Payload, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSysAction, err)
	}
	return nil
}

// Encode serialises a SysAction to JSON bytes.
func Encode(sa *SysAction) ([]byte, error) {
	return json.Marshal(sa)
}

// MakeSysAction is a convenience helper that creates and encodes a SysAction.
func MakeSysAction(kind ActionKind, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return Encode(&SysAction{Action: kind, Payload: raw})
}

// ParseAmount decodes a base-10 payload amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: missing amount", ErrInvalidAmount)
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return amount, nil
}
