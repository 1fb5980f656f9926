package provider

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/wonny/supersignal/internal/contracts"
)

// Adapter fetches one provider's view of a ticker.
// Implementations must be safe for concurrent use.
// ⭐ SSOT: provider별 구현은 이 인터페이스 뒤에만
type Adapter interface {
	Name() contracts.Source
	Fetch(ctx context.Context, ticker string) (*contracts.RawFieldSet, error)
}

// Call runs one adapter fetch under its own timeout.
// Panics, timeouts and empty results all come back as *FetchError.
func Call(ctx context.Context, a Adapter, ticker string, timeout time.Duration) (set *contracts.RawFieldSet, err error) {
	src := a.Name()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			set = nil
			err = NewFetchError(src, ticker, KindParse, fmt.Errorf("adapter panic: %v\n%s", r, debug.Stack()))
		}
	}()

	set, err = a.Fetch(ctx, ticker)
	if err != nil {
		// a deadline hit inside the adapter is reported as network, whatever it wrapped
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, Classify(src, ticker, err)
	}
	if set == nil {
		return nil, NewFetchError(src, ticker, KindParse, errors.New("empty field set"))
	}

	set.Source = src
	set.Ticker = ticker
	return set, nil
}
