package contracts

import "context"

// TickerScreener runs the full pipeline for one ticker.
// It never returns a Go error: every failure is captured in the result.
// ⭐ SSOT: Batch Coordinator는 이 인터페이스만 의존
type TickerScreener interface {
	Screen(ctx context.Context, ticker string) TickerResult
}
