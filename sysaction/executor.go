package sysaction

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
)

// ErrUnknownAction is returned when no registered handler claims an action.
var ErrUnknownAction = errors.New("unknown system action")

// Context carries information available to a system-action handler.
type Context struct {
	From    common.Address
	StateDB vm.StateDB
	Time    uint64 // unix seconds of the enclosing operation
}

// Handler is implemented by the vault and token sub-systems.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// NewRegistry returns a registry dispatching to the given handlers, in order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: handlers}
}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Execute decodes a system action from data and dispatches it to the first
// handler that claims its kind. Returns (gasUsed, error).
func (r *Registry) Execute(ctx *Context, data []byte) (uint64, error) {
	sa, err := Decode(data)
	if err != nil {
		return params.SysActionGas, err
	}
	for _, h := range r.handlers {
		if h.CanHandle(sa.Action) {
			return params.SysActionGas, h.Handle(ctx, sa)
		}
	}
	return params.SysActionGas, fmt.Errorf("%w: %q", ErrUnknownAction, sa.Action)
}
