package reducer

import (
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
)

const (
	CommandAdd       = "add"
	CommandIncrement = "increment"
	CommandDecrement = "decrement"
	CommandRemove    = "remove"
	CommandClear     = "clear"
)

// Command is the closed set of cart mutations. Only types in this package
// implement it.
type Command interface {
	Name() string
	command()
}

type Add struct {
	Product request.Product
}

type Increment struct {
	Product request.Product
}

type Decrement struct {
	ID response.ProductID
}

type Remove struct {
	ID response.ProductID
}

type Clear struct{}

func (Add) Name() string       { return CommandAdd }
func (Increment) Name() string { return CommandIncrement }
func (Decrement) Name() string { return CommandDecrement }
func (Remove) Name() string    { return CommandRemove }
func (Clear) Name() string     { return CommandClear }

func (Add) command()       {}
func (Increment) command() {}
func (Decrement) command() {}
func (Remove) command()    {}
func (Clear) command()     {}
