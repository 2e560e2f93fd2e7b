package settings

import (
	"fmt"
	"sync"
)

// Settings is a fully resolved parameter set for one item. Rates are
// whole percentages; the calculator converts them to fractions.
type Settings struct {
	LeadTime        int `json:"lead_time"`
	SafetyStockRate int `json:"safety_stock_rate"`
	AdditionRate    int `json:"addition_rate"`
	OrderUnit       int `json:"order_unit"`
	MinSales        int `json:"min_sales"`
}

// Summary renders the audit string recorded on every calculated row.
func (s Settings) Summary() string {
	return fmt.Sprintf("L:%d S:%d%% A:%d%% U:%d", s.LeadTime, s.SafetyStockRate, s.AdditionRate, s.OrderUnit)
}

// Patch is a partial parameter set. Nil fields fall through to the
// next tier during resolution.
type Patch struct {
	LeadTime        *int `json:"lead_time,omitempty"`
	SafetyStockRate *int `json:"safety_stock_rate,omitempty"`
	AdditionRate    *int `json:"addition_rate,omitempty"`
	OrderUnit       *int `json:"order_unit,omitempty"`
	MinSales        *int `json:"min_sales,omitempty"`
}

// apply overlays the patch's present fields, min-sales excluded. The
// min-sales chain resolves independently (see Snapshot.ResolveMinSales).
func (p Patch) apply(s Settings) Settings {
	if p.LeadTime != nil {
		s.LeadTime = *p.LeadTime
	}
	if p.SafetyStockRate != nil {
		s.SafetyStockRate = *p.SafetyStockRate
	}
	if p.AdditionRate != nil {
		s.AdditionRate = *p.AdditionRate
	}
	if p.OrderUnit != nil {
		s.OrderUnit = *p.OrderUnit
	}
	return s
}

// DefaultMaster mirrors the initial defaults shipped with the system.
func DefaultMaster() Settings {
	return Settings{
		LeadTime:        15,
		SafetyStockRate: 10,
		AdditionRate:    0,
		OrderUnit:       5,
		MinSales:        0,
	}
}

// Store holds the three configuration tiers: one master default record,
// per-supplier partial defaults and per-item partial overrides. The
// store is caller-owned and safe for concurrent reads; a calculation
// run resolves through one Snapshot so mid-run mutations are never
// observed.
type Store struct {
	mu        sync.RWMutex
	master    Settings
	suppliers map[string]Patch
	items     map[string]Patch
	revision  uint64
}

// NewStore creates a store seeded with the master defaults.
func NewStore() *Store {
	return &Store{
		master:    DefaultMaster(),
		suppliers: make(map[string]Patch),
		items:     make(map[string]Patch),
	}
}

// ReplaceMasterDefaults swaps the whole master record.
func (st *Store) ReplaceMasterDefaults(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.master = s
	st.revision++
}

// ReplaceSupplierDefault swaps the whole partial record for a supplier.
func (st *Store) ReplaceSupplierDefault(supplier string, p Patch) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.suppliers[supplier] = p
	st.revision++
}

// UpsertItemOverride swaps the whole partial record for an item code.
func (st *Store) UpsertItemOverride(code string, p Patch) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.items[code] = p
	st.revision++
}

// ClearAllOverrides drops every supplier default and item override,
// keeping the master record.
func (st *Store) ClearAllOverrides() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.suppliers = make(map[string]Patch)
	st.items = make(map[string]Patch)
	st.revision++
}

// Revision increments on every mutation. Cache keys include it so a
// summary computed under one configuration is never served for another.
func (st *Store) Revision() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.revision
}

// Resolve merges the tiers for one item. Shorthand for Snapshot().Resolve.
func (st *Store) Resolve(code, supplier string) Settings {
	return st.Snapshot().Resolve(code, supplier)
}

// ResolveMinSales resolves the minimum-sales threshold for one item.
// Shorthand for Snapshot().ResolveMinSales.
func (st *Store) ResolveMinSales(code, supplier string) int {
	return st.Snapshot().ResolveMinSales(code, supplier)
}

// Snapshot returns an immutable copy of the current configuration.
func (st *Store) Snapshot() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	suppliers := make(map[string]Patch, len(st.suppliers))
	for k, v := range st.suppliers {
		suppliers[k] = v
	}
	items := make(map[string]Patch, len(st.items))
	for k, v := range st.items {
		items[k] = v
	}

	return &Snapshot{
		Master:    st.master,
		Suppliers: suppliers,
		Items:     items,
		Revision:  st.revision,
	}
}

// Restore replaces the whole store state, e.g. from persistence.
func (st *Store) Restore(snap Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.master = snap.Master
	st.suppliers = make(map[string]Patch, len(snap.Suppliers))
	for k, v := range snap.Suppliers {
		st.suppliers[k] = v
	}
	st.items = make(map[string]Patch, len(snap.Items))
	for k, v := range snap.Items {
		st.items[k] = v
	}
	st.revision++
}

// Resolver is the read surface the filter and calculator consume.
type Resolver interface {
	Resolve(code, supplier string) Settings
	ResolveMinSales(code, supplier string) int
}

// Snapshot is one consistent view of the store's three tiers.
type Snapshot struct {
	Master    Settings         `json:"master_defaults"`
	Suppliers map[string]Patch `json:"supplier_defaults"`
	Items     map[string]Patch `json:"item_overrides"`
	Revision  uint64           `json:"-"`
}

// Resolve folds master, supplier default and item override left to
// right, field by field, with the right-most present field winning.
// MinSales keeps the master value; its chain is separate.
func (sn *Snapshot) Resolve(code, supplier string) Settings {
	resolved := sn.Master
	if p, ok := sn.Suppliers[supplier]; ok {
		resolved = p.apply(resolved)
	}
	if p, ok := sn.Items[code]; ok {
		resolved = p.apply(resolved)
	}
	return resolved
}

// ResolveMinSales resolves the minimum-sales threshold: an item
// override wins outright, else a supplier default, else the master
// value. Independent of the other fields' chain.
func (sn *Snapshot) ResolveMinSales(code, supplier string) int {
	if p, ok := sn.Items[code]; ok && p.MinSales != nil {
		return *p.MinSales
	}
	if p, ok := sn.Suppliers[supplier]; ok && p.MinSales != nil {
		return *p.MinSales
	}
	return sn.Master.MinSales
}
