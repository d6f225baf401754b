// Daily resource ledger — production, consumption, and net per kind.
package resource

// Ledger accumulates one settlement's resource flows for a single sim-day.
// It is cleared at the start of each day, written only by the economy
// driver during that day, and read by the resource store at day end.
//
// Invariant: Net(k) == Production(k) - Consumption(k) for every kind.
// A negative net is a valid state — it signals a deficit the resource
// store resolves by drawing down reserves.
type Ledger struct {
	production  [KindCount]int64
	consumption [KindCount]int64
	net         [KindCount]int64
}

// NewLedger returns a zeroed ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add records amount produced. Negative amounts are ignored.
func (l *Ledger) Add(k Kind, amount int64) {
	if !k.Valid() || amount < 0 {
		return
	}
	l.production[k] += amount
	l.net[k] += amount
}

// Subtract records amount consumed. Net may go negative.
func (l *Ledger) Subtract(k Kind, amount int64) {
	if !k.Valid() || amount < 0 {
		return
	}
	l.consumption[k] += amount
	l.net[k] -= amount
}

// ClearDailyChange zeroes all three accumulators.
func (l *Ledger) ClearDailyChange() {
	l.production = [KindCount]int64{}
	l.consumption = [KindCount]int64{}
	l.net = [KindCount]int64{}
}

// Production returns the amount produced so far today.
func (l *Ledger) Production(k Kind) int64 {
	if !k.Valid() {
		return 0
	}
	return l.production[k]
}

// Consumption returns the amount consumed so far today.
func (l *Ledger) Consumption(k Kind) int64 {
	if !k.Valid() {
		return 0
	}
	return l.consumption[k]
}

// Net returns production minus consumption for the day.
func (l *Ledger) Net(k Kind) int64 {
	if !k.Valid() {
		return 0
	}
	return l.net[k]
}

// InDeficit reports whether any kind has a negative net today.
func (l *Ledger) InDeficit() bool {
	for _, n := range l.net {
		if n < 0 {
			return true
		}
	}
	return false
}
