package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/internal/mirror"
	"github.com/Alturino/storefront/cart/internal/reducer"
	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
)

// flakyMirror rejects writes while failWrites is set.
type flakyMirror struct {
	*mirror.Memory
	failWrites bool
}

func (f *flakyMirror) Write(c context.Context, slot mirror.Slot, payload []byte) error {
	if f.failWrites {
		return errors.New("mirror unavailable")
	}
	return f.Memory.Write(c, slot, payload)
}

type cartTestContext struct {
	c        context.Context
	mirror   *mirror.Memory
	flaky    *flakyMirror
	slot     mirror.Slot
	store    *store.Store
	products map[string]request.Product
}

func (tc *cartTestContext) reset() {
	tc.c = context.Background()
	tc.mirror = mirror.NewMemory()
	tc.flaky = &flakyMirror{Memory: tc.mirror}
	tc.slot = mirror.NewSlot("carts", uuid.New())
	tc.store = store.New(tc.c, tc.flaky, tc.slot)
	tc.products = map[string]request.Product{}
}

func (tc *cartTestContext) anEmptyCart() error {
	if len(tc.store.Snapshot()) != 0 {
		return fmt.Errorf("expected empty cart got %d items", len(tc.store.Snapshot()))
	}
	return nil
}

func (tc *cartTestContext) aProductNamedPriced(id, name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	tc.products[id] = request.Product{ID: response.ProductID(id), Name: name, Price: p}
	return nil
}

func (tc *cartTestContext) product(id string) (request.Product, error) {
	p, ok := tc.products[id]
	if !ok {
		return request.Product{}, fmt.Errorf("unknown product %s", id)
	}
	return p, nil
}

func (tc *cartTestContext) iAdd(id string) error {
	return tc.iAddTimes(id, 1)
}

func (tc *cartTestContext) iAddTimes(id string, times int) error {
	p, err := tc.product(id)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		tc.store.Dispatch(tc.c, reducer.Add{Product: p})
	}
	return nil
}

func (tc *cartTestContext) iIncrement(id string) error {
	p, err := tc.product(id)
	if err != nil {
		return err
	}
	tc.store.Dispatch(tc.c, reducer.Increment{Product: p})
	return nil
}

func (tc *cartTestContext) iDecrement(id string) error {
	return tc.iDecrementTimes(id, 1)
}

func (tc *cartTestContext) iDecrementTimes(id string, times int) error {
	for i := 0; i < times; i++ {
		tc.store.Dispatch(tc.c, reducer.Decrement{ID: response.ProductID(id)})
	}
	return nil
}

func (tc *cartTestContext) iRemove(id string) error {
	tc.store.Dispatch(tc.c, reducer.Remove{ID: response.ProductID(id)})
	return nil
}

func (tc *cartTestContext) iClearTheCart() error {
	tc.store.Dispatch(tc.c, reducer.Clear{})
	return nil
}

func (tc *cartTestContext) iRestartTheCart() error {
	tc.store = store.New(tc.c, tc.flaky, tc.slot)
	return nil
}

func (tc *cartTestContext) theMirrorRejectsWrites() error {
	tc.flaky.failWrites = true
	return nil
}

func (tc *cartTestContext) theMirrorAcceptsWrites() error {
	tc.flaky.failWrites = false
	return nil
}

func (tc *cartTestContext) theMirrorSlotHolds(payload string) error {
	return tc.mirror.Write(tc.c, tc.slot, []byte(payload))
}

func (tc *cartTestContext) theCartHasItems(count int) error {
	if actual := len(tc.store.Snapshot()); actual != count {
		return fmt.Errorf("expected %d items got %d", count, actual)
	}
	return nil
}

func (tc *cartTestContext) hasQuantity(id string, quantity int) error {
	item, ok := tc.store.Snapshot().Find(response.ProductID(id))
	if !ok {
		return fmt.Errorf("product %s is not in the cart", id)
	}
	if item.Quantity != quantity {
		return fmt.Errorf("expected quantity %d got %d", quantity, item.Quantity)
	}
	return nil
}

func (tc *cartTestContext) isNotInTheCart(id string) error {
	if _, ok := tc.store.Snapshot().Find(response.ProductID(id)); ok {
		return fmt.Errorf("product %s is still in the cart", id)
	}
	return nil
}

func (tc *cartTestContext) theTotalPriceIs(total string) error {
	expected, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	if actual := tc.store.Snapshot().TotalPrice(); !actual.Equal(expected) {
		return fmt.Errorf("expected total %s got %s", expected, actual)
	}
	return nil
}

func (tc *cartTestContext) theMirrorHoldsItems(count int) error {
	payload, err := tc.mirror.Read(tc.c, tc.slot)
	if err != nil {
		return err
	}
	cart, err := mirror.Decode(payload)
	if err != nil {
		return err
	}
	if len(cart) != count {
		return fmt.Errorf("expected %d persisted items got %d", count, len(cart))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^a product "([^"]*)" named "([^"]*)" priced (\d+(?:\.\d+)?)$`, tc.aProductNamedPriced)
	ctx.Step(`^the mirror slot holds "([^"]*)"$`, tc.theMirrorSlotHolds)
	ctx.Step(`^the mirror rejects writes$`, tc.theMirrorRejectsWrites)
	ctx.Step(`^the mirror accepts writes$`, tc.theMirrorAcceptsWrites)

	ctx.Step(`^I add "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I add "([^"]*)" (\d+) times$`, tc.iAddTimes)
	ctx.Step(`^I increment "([^"]*)"$`, tc.iIncrement)
	ctx.Step(`^I decrement "([^"]*)"$`, tc.iDecrement)
	ctx.Step(`^I decrement "([^"]*)" (\d+) times$`, tc.iDecrementTimes)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^I restart the cart$`, tc.iRestartTheCart)

	ctx.Step(`^the cart has (\d+) items?$`, tc.theCartHasItems)
	ctx.Step(`^"([^"]*)" has quantity (\d+)$`, tc.hasQuantity)
	ctx.Step(`^"([^"]*)" is not in the cart$`, tc.isNotInTheCart)
	ctx.Step(`^the total price is (\d+(?:\.\d+)?)$`, tc.theTotalPriceIs)
	ctx.Step(`^the mirror holds (\d+) items?$`, tc.theMirrorHoldsItems)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
