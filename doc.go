// Package taxlots provides the cost-basis accounting core of a personal
// portfolio: tax lots, realized gains and valuation.
//
// The core functionalities include:
//   - Lot Tracking: per-symbol queues of open purchase lots, consumed
//     first-in-first-out when shares are sold. Each consumed lot produces a
//     RealizedGain event.
//   - Tax Classification: short-term or long-term classification of every
//     realized gain based on its holding period, and wash-sale detection for
//     losses repurchased within 30 days.
//   - Valuation: aggregation of open lots and current prices into positions,
//     totals, returns and allocation weights.
//   - Ledger: a chronological, human-readable JSONL record of buy and sell
//     transactions that can be replayed into a Book.
//
// All quantities and amounts are exact decimals. The package performs no I/O
// of its own beyond encoding to and decoding from the readers and writers it
// is given; prices and persistence are supplied by the callers (see the quote
// and store packages).
package taxlots
