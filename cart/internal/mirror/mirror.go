package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alturino/storefront/cart/pkg/response"
)

var ErrEmptySlot = errors.New("mirror slot is empty")

// Slot names the durable copy of one cart session.
type Slot struct {
	Prefix    string
	SessionID uuid.UUID
}

func NewSlot(prefix string, sessionID uuid.UUID) Slot {
	return Slot{Prefix: prefix, SessionID: sessionID}
}

func (s Slot) String() string {
	if s.Prefix == "" {
		return s.SessionID.String()
	}
	return s.Prefix + ":" + s.SessionID.String()
}

// Mirror stores serialized cart snapshots. Implementations overwrite a slot
// wholesale on every Write and return ErrEmptySlot from Read when nothing was
// written yet.
type Mirror interface {
	Read(c context.Context, slot Slot) ([]byte, error)
	Write(c context.Context, slot Slot, payload []byte) error
	Wipe(c context.Context, slot Slot) error
}

func Encode(cart response.Cart) ([]byte, error) {
	if cart == nil {
		cart = response.Cart{}
	}
	return json.Marshal(cart)
}

// Decode rejects payloads that are not a JSON array of well-formed items, or
// that break the cart invariants.
func Decode(payload []byte) (response.Cart, error) {
	cart := response.Cart{}
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, fmt.Errorf("failed decoding cart with error=%w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("failed decoding cart with error=null payload")
	}
	if !cart.Valid() {
		return nil, fmt.Errorf("failed decoding cart with error=invalid items")
	}
	return cart, nil
}
