package entity

import (
	"context"
	"net/http"
	"sync"

	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/store"
)

// DashboardData is the landing-page aggregate: the viewer and per-entity
// counts. It is read-only and has no list/detail split.
type DashboardData struct {
	User  Ref            `json:"user"`
	Stats map[string]int `json:"stats"`
}

// Dashboard caches the aggregate with the same status discipline as the
// entity stores.
type Dashboard struct {
	gw store.Doer

	mu     sync.RWMutex
	data   *DashboardData
	status store.Status
	errMsg string
}

func NewDashboard(gw store.Doer) *Dashboard {
	return &Dashboard{gw: gw}
}

// Fetch loads the aggregate.
func (d *Dashboard) Fetch(ctx context.Context) (DashboardData, error) {
	d.mu.Lock()
	d.status = store.StatusLoading
	d.errMsg = ""
	d.mu.Unlock()

	raw, err := d.gw.Do(ctx, http.MethodGet, "/dashboard", nil)
	if err != nil {
		d.mu.Lock()
		d.status = store.StatusError
		d.errMsg = gateway.UserMessage(err, "Failed to load dashboard")
		d.mu.Unlock()
		return DashboardData{}, err
	}
	data, err := store.UnwrapItem[DashboardData](raw, []string{"data"})
	if err != nil {
		d.mu.Lock()
		d.status = store.StatusError
		d.errMsg = err.Error()
		d.mu.Unlock()
		return DashboardData{}, err
	}
	d.mu.Lock()
	d.data = &data
	d.status = store.StatusIdle
	d.mu.Unlock()
	return data, nil
}

// Data returns the cached aggregate.
func (d *Dashboard) Data() (DashboardData, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.data == nil {
		return DashboardData{}, false
	}
	return *d.data, true
}

// Status returns the loading state and its error message.
func (d *Dashboard) Status() (store.Status, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, d.errMsg
}
