package game

import "runtime"

// CapacityPolicy decides whether the spawn task may add another fish.
// Allow and Status are called with the room lock held.
type CapacityPolicy interface {
	Allow(r *Room) bool
	// BlockedEvent names the notification broadcast when a spawn is
	// refused, with the metrics clients need to render it.
	BlockedEvent(r *Room) (event string, data map[string]any)
}

// FixedCount caps the number of concurrently live fish per room.
type FixedCount struct {
	Max int
}

func (p FixedCount) Allow(r *Room) bool {
	return len(r.Fishes) < p.Max
}

func (p FixedCount) BlockedEvent(r *Room) (string, map[string]any) {
	return "capacity-reached", map[string]any{
		"roomId":    r.ID,
		"fishCount": len(r.Fishes),
		"maxFish":   p.Max,
	}
}

// ResourceProxy caps spawning on a measured resource-consumption proxy
// (process heap) instead of a raw count. Used for load demonstrations;
// production deployments run FixedCount.
type ResourceProxy struct {
	MaxHeapMB uint64
}

func (p ResourceProxy) Allow(r *Room) bool {
	return heapMB() < p.MaxHeapMB
}

func (p ResourceProxy) BlockedEvent(r *Room) (string, map[string]any) {
	used := heapMB()
	return "memory-limit-reached", map[string]any{
		"roomId":     r.ID,
		"fishCount":  len(r.Fishes),
		"heapUsedMB": used,
		"maxHeapMB":  p.MaxHeapMB,
		"status":     memStatus(used, p.MaxHeapMB),
	}
}

// MemoryStatus reports the proxy's current reading for the optional
// memory-status event and the admin surface.
func (p ResourceProxy) MemoryStatus(r *Room) map[string]any {
	used := heapMB()
	return map[string]any{
		"roomId":     r.ID,
		"fishCount":  len(r.Fishes),
		"heapUsedMB": used,
		"maxHeapMB":  p.MaxHeapMB,
		"status":     memStatus(used, p.MaxHeapMB),
	}
}

func heapMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc / (1024 * 1024)
}

func memStatus(used, max uint64) string {
	switch {
	case used >= max:
		return "critical"
	case max > 0 && used*100/max >= 70:
		return "warning"
	default:
		return "normal"
	}
}
